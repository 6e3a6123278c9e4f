package cmd

import (
	"bytes"
	"testing"

	"github.com/jsphweid/retune31/theory"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	var buf bytes.Buffer

	assert.NoError(t, describe(&buf, "C4"))
	assert.Contains(t, buf.String(), "from A=-23")
	assert.Contains(t, buf.String(), "from A4=-23")
	buf.Reset()

	assert.NoError(t, describe(&buf, "F#"))
	assert.Contains(t, buf.String(), "from A=-8")
	buf.Reset()

	err := describe(&buf, "H2")
	assert.ErrorIs(t, err, theory.ErrInvalidSpelling)
}
