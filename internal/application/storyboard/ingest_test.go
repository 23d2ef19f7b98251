package storyboard

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyboard-ai-api/pkg/errors"
)

// buildDocx 构造仅含正文的最小 docx 包
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	t.Run("plain text formats pass through", func(t *testing.T) {
		for _, name := range []string{"script.txt", "script.md", "script.json", "SCRIPT.TXT"} {
			got, err := ExtractText(name, []byte("第一场 天台 夜"))
			require.NoError(t, err)
			assert.Equal(t, "第一场 天台 夜", got)
		}
	})

	t.Run("docx paragraphs are joined with newlines", func(t *testing.T) {
		data := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>第一场</w:t></w:r><w:r><w:t> 天台 夜</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>李雷站在栏杆边。</w:t></w:r></w:p>
  </w:body>
</w:document>`)

		got, err := ExtractText("script.docx", data)
		require.NoError(t, err)
		assert.Equal(t, "第一场 天台 夜\n李雷站在栏杆边。\n", got)
	})

	t.Run("legacy doc is rejected with guidance", func(t *testing.T) {
		_, err := ExtractText("script.doc", []byte("anything"))
		require.Error(t, err)
		appErr := errors.AsAppError(err)
		assert.Equal(t, errors.CodeUnsupportedFormat, appErr.Code)
		assert.Contains(t, appErr.Message, ".docx")
	})

	t.Run("unknown extension is rejected", func(t *testing.T) {
		_, err := ExtractText("script.pdf", []byte("anything"))
		require.Error(t, err)
		appErr := errors.AsAppError(err)
		assert.Equal(t, errors.CodeUnsupportedFormat, appErr.Code)
	})

	t.Run("corrupt docx is rejected", func(t *testing.T) {
		_, err := ExtractText("script.docx", []byte("not a zip"))
		require.Error(t, err)
		appErr := errors.AsAppError(err)
		assert.Equal(t, errors.CodeUnsupportedFormat, appErr.Code)
	})

	t.Run("docx without document body is rejected", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create("word/other.xml")
		require.NoError(t, err)
		_, err = f.Write([]byte("<x/>"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		_, err = ExtractText("script.docx", buf.Bytes())
		require.Error(t, err)
	})
}
