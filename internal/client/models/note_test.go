package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNote_Matches(t *testing.T) {
	n := &Note{Title: "Shopping List", Content: "milk, eggs"}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"shopping", true},
		{"LIST MILK", true},
		{"EGGS", true},
		{"bread", false},
		{"list,", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Matches(tt.query))
		})
	}
}
