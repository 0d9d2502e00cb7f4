package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Some notes."), 0o644))

	up, err := ReadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", up.Name)
	assert.Equal(t, []byte("Some notes."), up.Data)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestText_AcceptsPlainText(t *testing.T) {
	inputs := map[string]string{
		"ascii":   "France is a country in Western Europe.",
		"unicode": "Crème brûlée is a dessert. “Quoted” text.",
	}
	for name, body := range inputs {
		t.Run(name, func(t *testing.T) {
			up := Upload{Name: name + ".txt", Data: []byte(body)}
			text, err := up.Text()
			require.NoError(t, err)
			assert.Equal(t, body, text)
			assert.Contains(t, up.MIMEType(), "text/plain")
		})
	}
}

func TestText_RejectsPDF(t *testing.T) {
	up := Upload{Name: "report.pdf", Data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")}

	_, err := up.Text()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "application/pdf")
}

func TestText_RejectsBinary(t *testing.T) {
	up := Upload{Name: "blob.bin", Data: []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00}}

	_, err := up.Text()
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
