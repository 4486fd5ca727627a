package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStageReaderWritesUniqueFiles(t *testing.T) {
	stager, err := NewStager(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatal(err)
	}

	a, err := stager.StageReader("proof.png", strings.NewReader("one"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := stager.StageReader("proof.png", strings.NewReader("two"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Path == b.Path {
		t.Fatalf("paths collide: %s", a.Path)
	}
	if !strings.HasSuffix(a.Path, "-proof.png") || filepath.Dir(a.Path) != stager.Dir() {
		t.Errorf("path = %s", a.Path)
	}
	if a.Size != 3 || a.OriginalName != "proof.png" {
		t.Errorf("staged = %+v", a)
	}

	data, err := os.ReadFile(b.Path)
	if err != nil || string(data) != "two" {
		t.Fatalf("content = %q, %v", data, err)
	}

	for _, s := range []*Staged{a, b} {
		if err := s.Remove(); err != nil {
			t.Fatal(err)
		}
		if err := s.Remove(); err != nil {
			t.Fatalf("second Remove() = %v", err)
		}
	}
	entries, _ := os.ReadDir(stager.Dir())
	if len(entries) != 0 {
		t.Errorf("dir not empty: %d entries", len(entries))
	}
}

func TestStageReaderSanitizesName(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../../etc/passwd", `..\..\evil.exe`, "", ".."} {
		s, err := stager.StageReader(name, strings.NewReader("x"))
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if filepath.Dir(s.Path) != stager.Dir() {
			t.Errorf("%q escaped dir: %s", name, s.Path)
		}
		_ = s.Remove()
	}
}

func TestStageFromMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("proof", "receipt.jpg")
	_, _ = part.Write([]byte("JPEG"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	_, header, err := req.FormFile("proof")
	if err != nil {
		t.Fatal(err)
	}

	stager, _ := NewStager(t.TempDir())
	staged, err := stager.Stage(header)
	if err != nil {
		t.Fatal(err)
	}
	defer staged.Remove()
	if staged.OriginalName != "receipt.jpg" || staged.Size != 4 {
		t.Errorf("staged = %+v", staged)
	}
}

func TestRemoveNil(t *testing.T) {
	var s *Staged
	if err := s.Remove(); err != nil {
		t.Fatal(err)
	}
}
