package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeparateNegativeArgs(t *testing.T) {
	root := newRootCmd()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"no negatives", []string{"320", "0"}, []string{"320", "0"}},
		{"flags only", []string{"--json", "history", "list"}, []string{"--json", "history", "list"}},
		{"turn", []string{"0", "-320"}, []string{"--", "0", "-320"}},
		{"accelerate", []string{"0", "0", "-100", "0", "0.012"}, []string{"--", "0", "0", "-100", "0", "0.012"}},
		{"bool flag after", []string{"-320", "0", "--json"}, []string{"--json", "--", "-320", "0"}},
		{"value flag keeps value", []string{"--log-level", "debug", "0", "-5"}, []string{"--log-level", "debug", "--", "0", "-5"}},
		{"subcommand stays first", []string{"turn", "--accel", "20", "320", "-5"}, []string{"turn", "--accel", "20", "--", "320", "-5"}},
		{"negative flag value", []string{"accel", "--accel", "-5", "0", "0", "1", "0"}, []string{"accel", "--accel", "-5", "--", "0", "0", "1", "0"}},
		{"nested subcommand", []string{"config", "set", "physics.accel", "-1"}, []string{"config", "set", "--", "physics.accel", "-1"}},
		{"already separated", []string{"--", "-320", "0"}, []string{"--", "-320", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, separateNegativeArgs(root, tt.args))
		})
	}
}
