package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/distribution/internal/application/errors"
)

func TestSHA256Digester(t *testing.T) {
	d := SHA256Digester{}

	assert.Equal(t, "sha256", d.Algorithm())
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		string(d.Sum(nil)))
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		string(d.Sum([]byte("abc"))))
}

func TestBLAKE3Digester(t *testing.T) {
	d := BLAKE3Digester{}

	assert.Equal(t, "blake3", d.Algorithm())
	assert.Equal(t,
		"af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		string(d.Sum(nil)))
	assert.Len(t, d.Sum([]byte("abc")), 64)
	assert.Equal(t, d.Sum([]byte("abc")), d.Sum([]byte("abc")))
	assert.NotEqual(t, d.Sum([]byte("abc")), d.Sum([]byte("abd")))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"sha256", SHA256},
		{"SHA256", SHA256},
		{"", SHA256},
		{" blake3 ", BLAKE3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Algorithm())
		})
	}
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New("md5")

	var cerr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "md5")
}
