// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jeranaias/chatdock/internal/api"
	"github.com/jeranaias/chatdock/internal/media"
)

// backend is a fake chat API recording uploaded file names.
type backend struct {
	mu        sync.Mutex
	reply     string
	chatCode  int
	uploaded  []string
	uploadURL string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		code, reply := b.chatCode, b.reply
		b.mu.Unlock()
		if code != 0 {
			http.Error(w, "backend down", code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.SendResponse{Messages: []api.ResponseMessage{{
			Content: []api.ResponsePart{{Type: "text", Text: reply}},
		}}})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		_, fh, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.uploaded = append(b.uploaded, fh.Filename)
		url := b.uploadURL
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.UploadResponse{ImageURL: url})
	})
	return mux
}

func (b *backend) files() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploaded...)
}

var _ = Describe("Commands", func() {
	var (
		ctx        context.Context
		tmpDir     string
		configFile string
		be         *backend
		srv        *httptest.Server
	)

	run := func(args ...string) (string, error) {
		cmd := NewRootCmd()
		var out, errOut bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs(append([]string{"--config", configFile}, args...))
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	writeFile := func(name string, data []byte) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, data, 0644)).To(Succeed())
		return path
	}

	pngData := func() []byte {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))).To(Succeed())
		return buf.Bytes()
	}

	BeforeEach(func() {
		ctx = context.Background()
		tmpDir = GinkgoT().TempDir()

		be = &backend{reply: "Hello there", uploadURL: "https://files.example/u/1.png"}
		srv = httptest.NewServer(be.handler())
		DeferCleanup(srv.Close)

		configFile = filepath.Join(tmpDir, "config.toml")
		Expect(os.WriteFile(configFile, []byte(fmt.Sprintf(
			"[api]\nbase_url = %q\ntimeout_secs = 5\n\n[log]\nlevel = \"error\"\n", srv.URL,
		)), 0600)).To(Succeed())
	})

	Describe("ask", func() {
		It("prints the reply", func() {
			out, err := run("ask", "hi", "there")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("Hello there\n"))
		})

		It("strips formatting markers when not on a terminal", func() {
			be.reply = "**bold** and *soft*"
			out, err := run("ask", "format please")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("bold and soft\n"))
		})

		It("prints JSON with --json", func() {
			out, err := run("ask", "--json", "hi")
			Expect(err).NotTo(HaveOccurred())

			var res askResult
			Expect(json.Unmarshal([]byte(out), &res)).To(Succeed())
			Expect(res.Reply).To(Equal("Hello there"))
			Expect(res.Messages).To(Equal(2))
		})

		It("reports backend failures with the network exit code", func() {
			be.chatCode = http.StatusInternalServerError
			_, err := run("ask", "hi")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("backend down"))
			Expect(ExitCode(err)).To(Equal(ExitNetworkError))
		})

		It("rejects a blank message", func() {
			_, err := run("ask", "   ")
			Expect(ExitCode(err)).To(Equal(ExitUsageError))
		})
	})

	Describe("upload", func() {
		It("prints the hosted URL", func() {
			path := writeFile("whiteboard.png", pngData())
			out, err := run("upload", path)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("https://files.example/u/1.png\n"))
			Expect(be.files()).To(Equal([]string{"whiteboard.png"}))
		})

		It("refuses images in PDF-only mode", func() {
			path := writeFile("whiteboard.png", pngData())
			_, err := run("--pdf", "upload", path)
			Expect(errors.Is(err, errRequestFailed)).To(BeFalse())
			Expect(ExitCode(err)).To(Equal(ExitUsageError))
			Expect(be.files()).To(BeEmpty())
		})

		It("refuses content that does not match the extension", func() {
			path := writeFile("notes.pdf", []byte("just text"))
			_, err := run("upload", path)
			Expect(ExitCode(err)).To(Equal(ExitUsageError))
		})

		It("fails on a missing file", func() {
			_, err := run("upload", filepath.Join(tmpDir, "missing.png"))
			Expect(ExitCode(err)).To(Equal(ExitGeneralError))
		})
	})

	Describe("capture", func() {
		It("uploads a frame from the still source", func() {
			still := writeFile("desk.png", pngData())
			out, err := run("--camera-still", still, "capture", "--json")
			Expect(err).NotTo(HaveOccurred())

			var res uploadResult
			Expect(json.Unmarshal([]byte(out), &res)).To(Succeed())
			Expect(res.URLs).To(Equal([]string{"https://files.example/u/1.png"}))
			Expect(be.files()).To(Equal([]string{media.CapturedName}))
		})

		It("needs a camera source", func() {
			_, err := run("capture")
			Expect(ExitCode(err)).To(Equal(ExitUsageError))
		})
	})

	Describe("config", func() {
		It("writes a new file and refuses to overwrite it", func() {
			path := filepath.Join(tmpDir, "nested", "chatdock.toml")
			configFile = path

			out, err := run("config", "init", "--api-url", "http://backend.internal:9000", "--pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(path))

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`base_url = "http://backend.internal:9000"`))
			Expect(string(data)).To(ContainSubstring("pdf_only = true"))

			_, err = run("config", "init")
			Expect(ExitCode(err)).To(Equal(ExitUsageError))

			_, err = run("config", "init", "--force")
			Expect(err).NotTo(HaveOccurred())
		})

		It("redacts the API key", func() {
			Expect(os.WriteFile(configFile, []byte(fmt.Sprintf(
				"[api]\nbase_url = %q\napi_key = \"sk-secret\"\n", srv.URL,
			)), 0600)).To(Succeed())

			out, err := run("config", "show")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("[REDACTED]"))
			Expect(out).NotTo(ContainSubstring("sk-secret"))
		})

		It("rejects invalid flag values", func() {
			_, err := run("--log-level", "loud", "config", "show")
			Expect(ExitCode(err)).To(Equal(ExitConfigError))
		})

		It("rejects unknown keys in the file", func() {
			Expect(os.WriteFile(configFile, []byte("[api]\nbase_uri = \"x\"\n"), 0600)).To(Succeed())
			_, err := run("config", "show")
			Expect(ExitCode(err)).To(Equal(ExitConfigError))
		})
	})

	Describe("version", func() {
		It("prints JSON", func() {
			out, err := run("version", "--json")
			Expect(err).NotTo(HaveOccurred())

			var info versionInfo
			Expect(json.Unmarshal([]byte(out), &info)).To(Succeed())
			Expect(info.Version).To(Equal(Version))
			Expect(info.GoVersion).NotTo(BeEmpty())
		})
	})
})

var _ = Describe("DisplayError", func() {
	It("writes JSON with the exit code", func() {
		var buf bytes.Buffer
		DisplayError(&buf, &UsageError{Reason: "message is blank"}, true)

		var out map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &out)).To(Succeed())
		Expect(out["error"]).To(Equal("message is blank"))
		Expect(out["exit_code"]).To(BeEquivalentTo(ExitUsageError))
		Expect(out["success"]).To(BeFalse())
	})

	It("labels plain errors", func() {
		var buf bytes.Buffer
		DisplayError(&buf, io.ErrUnexpectedEOF, false)
		Expect(buf.String()).To(ContainSubstring("[ERROR]"))
		Expect(buf.String()).To(ContainSubstring(io.ErrUnexpectedEOF.Error()))
	})
})
