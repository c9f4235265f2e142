package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Descriptor
		wantErr bool
	}{
		{
			name: "name and hash",
			line: "Foo.json!abcd1234",
			want: Descriptor{Name: "Foo.json", Hash: "abcd1234"},
		},
		{
			name: "splits on first separator only",
			line: "Foo.json!abcd!extra",
			want: Descriptor{Name: "Foo.json", Hash: "abcd!extra"},
		},
		{
			name: "texture location",
			line: "/Lotus/Interface/Icons/Foo.png!00a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3",
			want: Descriptor{
				Name: "/Lotus/Interface/Icons/Foo.png",
				Hash: "00a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3",
			},
		},
		{
			name:    "missing separator",
			line:    "Foo.json",
			wantErr: true,
		},
		{
			name:    "empty name",
			line:    "!abcd1234",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDescriptor(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrMalformedDescriptor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportBaseName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ExportWeapons", ExportBaseName("ExportWeapons.json"))
	assert.Equal(t, "ExportManifest", ExportBaseName("ExportManifest.json"))
	assert.Equal(t, "NoExtension", ExportBaseName("NoExtension"))
}

func TestTextureFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"Lotus.Interface.Icons.Foo.png",
		TextureFileName("/Lotus/Interface/Icons/Foo"))
	assert.Equal(t, "Foo.png", TextureFileName("Foo"))
}
