// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields_set(t *testing.T) {
	tests := map[string]struct {
		given  string
		want   string
		wantOk bool
	}{
		"plain value":       {given: "1920", want: "1920", wantOk: true},
		"trimmed value":     {given: " 25/1 \n", want: "25/1", wantOk: true},
		"empty":             {given: "", wantOk: false},
		"blank":             {given: "   ", wantOk: false},
		"not applicable":    {given: "N/A", wantOk: false},
		"zero rate":         {given: "0/0", wantOk: false},
		"zero aspect ratio": {given: "0:1", wantOk: false},
		"zero is a value":   {given: "0", want: "0", wantOk: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := Fields{}
			f.set(FieldWidth, tc.given)
			got, ok := f.Lookup(FieldWidth)
			assert.Equal(t, tc.wantOk, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFields_setDefault(t *testing.T) {
	f := Fields{}
	f.setDefault(FieldFormat, "N/A")
	_, ok := f.Lookup(FieldFormat)
	assert.False(t, ok, "unknown value must not be stored")

	f.setDefault(FieldFormat, "AVC")
	f.setDefault(FieldFormat, "h264")
	got, _ := f.Lookup(FieldFormat)
	assert.Equal(t, "AVC", got)
}

func TestFields_Lookup_nil(t *testing.T) {
	var f Fields
	_, ok := f.Lookup(FieldCodec)
	assert.False(t, ok)
}
