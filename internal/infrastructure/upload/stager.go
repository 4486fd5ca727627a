package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

// Stager copies uploaded files into a scratch directory for the lifetime of
// a single request.
type Stager struct {
	dir string
}

// NewStager prepares dir and returns a Stager writing into it.
func NewStager(dir string) (*Stager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("アップロードディレクトリの作成に失敗: %w", err)
	}
	return &Stager{dir: dir}, nil
}

// Dir returns the scratch directory.
func (s *Stager) Dir() string { return s.dir }

// Staged is a file copied to disk. Remove must be called on every path.
type Staged struct {
	domain.ProofFile
}

// Remove deletes the staged copy. It is safe to call on nil and more than once.
func (s *Staged) Remove() error {
	if s == nil || s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Stage writes the uploaded part to a uniquely named file.
func (s *Stager) Stage(header *multipart.FileHeader) (*Staged, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("アップロードファイルを開けません: %w", err)
	}
	defer src.Close()
	return s.StageReader(header.Filename, src)
}

// StageReader writes r to a file named <unix-millis>-<uuid>-<basename>.
func (s *Stager) StageReader(originalName string, r io.Reader) (*Staged, error) {
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), safeBase(originalName))
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("一時ファイルの作成に失敗: %w", err)
	}
	staged := &Staged{ProofFile: domain.ProofFile{OriginalName: originalName, Path: path}}

	size, copyErr := io.Copy(dst, r)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = staged.Remove()
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("一時ファイルへの書き込みに失敗: %w", copyErr)
	}
	staged.Size = size
	return staged, nil
}

func safeBase(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "" || base == "." || base == "/" || base == ".." {
		return "upload"
	}
	return base
}
