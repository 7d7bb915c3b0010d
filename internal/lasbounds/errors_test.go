package lasbounds

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := ioErr("scan", "/data", fs.ErrNotExist)
	assert.Equal(t, "scan /data: I/O error: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	err = driverErr("srs", "", errors.New("boom"))
	assert.Equal(t, "srs: output-driver error: boom", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ioErr("read", "a", errors.New("x")), KindIO},
		{formatErr("read", "a", ErrSignature), KindFormat},
		{driverErr("write", "a", errors.New("x")), KindDriver},
		{validationErr("write", "a", errors.New("x")), KindValidation},
		{fmt.Errorf("wrapped: %w", formatErr("read", "a", ErrVersion)), KindFormat},
		{errors.New("plain"), 0},
		{nil, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, KindOf(tc.err))
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "I/O", KindIO.String())
	assert.Equal(t, "format", KindFormat.String())
	assert.Equal(t, "output-driver", KindDriver.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
