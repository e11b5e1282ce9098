package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		in, want PageRequest
	}{
		{PageRequest{}, PageRequest{Limit: DefaultPageLimit}},
		{PageRequest{Limit: -3, Offset: -1}, PageRequest{Limit: DefaultPageLimit}},
		{PageRequest{Limit: 500, Offset: 40}, PageRequest{Limit: MaxPageLimit, Offset: 40}},
		{PageRequest{Limit: 7, Offset: 2}, PageRequest{Limit: 7, Offset: 2}},
	}
	for _, tc := range cases {
		got := tc.in
		got.Normalize()
		assert.Equal(t, tc.want, got)
	}
}
