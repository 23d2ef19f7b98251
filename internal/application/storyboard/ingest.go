// Package storyboard 实现对话驱动的分镜整理核心
package storyboard

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"storyboard-ai-api/pkg/errors"
)

// ExtractText 从上传文档中提取纯文本
// txt/md/json 原样返回，docx 解包取正文，旧版 doc 不支持。
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".json":
		return string(data), nil
	case ".docx":
		return extractDocx(data)
	case ".doc":
		return "", errors.New(errors.CodeUnsupportedFormat, "legacy .doc format is not supported, convert to .docx first")
	default:
		return "", errors.ErrUnsupportedFormat
	}
}

// docx 正文 XML 中关心的节点：w:p 为段落，w:t 为文本
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Texts []string `xml:"r>t"`
}

// extractDocx 解包 docx 并拼接 word/document.xml 中的段落文本
func extractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnsupportedFormat, "file is not a valid docx archive")
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New(errors.CodeUnsupportedFormat, "docx archive has no document body")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document body: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read document body: %w", err)
	}

	var doc docxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", errors.Wrap(err, errors.CodeUnsupportedFormat, "failed to parse document body")
	}

	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		line := strings.Join(p.Texts, "")
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}
