// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package camera_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jeranaias/chatdock/internal/camera"
	"github.com/jeranaias/chatdock/internal/media"
)

type fakeSource struct {
	mu       sync.Mutex
	started  int
	stopped  int
	shots    int
	startErr error
	snapErr  error
}

func (f *fakeSource) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeSource) Snapshot(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapErr != nil {
		return "", f.snapErr
	}
	f.shots++
	return "data:image/jpeg;base64,frame" + strings.Repeat("x", f.shots), nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func encodeImage(asPNG bool) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if asPNG {
		Expect(png.Encode(&buf, img)).To(Succeed())
	} else {
		Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())
	}
	return buf.Bytes()
}

var _ = Describe("Control", func() {
	var (
		ctx      context.Context
		src      *fakeSource
		captured []string
		ctrl     *camera.Control
	)

	BeforeEach(func() {
		ctx = context.Background()
		src = &fakeSource{}
		captured = nil
		ctrl = camera.NewControl(src, func(dataURL string) {
			captured = append(captured, dataURL)
		}, nil)
	})

	It("refuses to capture before mount", func() {
		Expect(ctrl.Capture(ctx)).To(MatchError(camera.ErrNotMounted))
		Expect(captured).To(BeEmpty())
	})

	It("hands each snapshot to the callback independently", func() {
		Expect(ctrl.Mount(ctx)).To(Succeed())
		Expect(ctrl.Capture(ctx)).To(Succeed())
		Expect(ctrl.Capture(ctx)).To(Succeed())

		Expect(captured).To(HaveLen(2))
		Expect(captured[0]).NotTo(Equal(captured[1]))
	})

	It("does not invoke the callback when the snapshot fails", func() {
		src.snapErr = errors.New("sensor busy")
		Expect(ctrl.Mount(ctx)).To(Succeed())

		Expect(ctrl.Capture(ctx)).To(MatchError("sensor busy"))
		Expect(captured).To(BeEmpty())
	})

	It("makes mount and unmount idempotent", func() {
		Expect(ctrl.Mount(ctx)).To(Succeed())
		Expect(ctrl.Mount(ctx)).To(Succeed())
		Expect(src.started).To(Equal(1))
		Expect(ctrl.Mounted()).To(BeTrue())

		Expect(ctrl.Unmount()).To(Succeed())
		Expect(ctrl.Unmount()).To(Succeed())
		Expect(src.stopped).To(Equal(1))
		Expect(ctrl.Mounted()).To(BeFalse())

		Expect(ctrl.Capture(ctx)).To(MatchError(camera.ErrNotMounted))
	})

	It("stays unmounted when the source fails to start", func() {
		src.startErr = errors.New("no device")
		Expect(ctrl.Mount(ctx)).To(MatchError("no device"))
		Expect(ctrl.Mounted()).To(BeFalse())
	})
})

var _ = Describe("StillSource", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("serves a PNG as a JPEG data URL", func() {
		path := filepath.Join(tmpDir, "still.png")
		Expect(os.WriteFile(path, encodeImage(true), 0644)).To(Succeed())

		src := camera.NewStillSource(path)
		Expect(src.Start(context.Background())).To(Succeed())

		dataURL, err := src.Snapshot(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(dataURL).To(HavePrefix("data:image/jpeg;base64,"))

		file, err := media.FromDataURL(dataURL)
		Expect(err).NotTo(HaveOccurred())
		Expect(file.ContentType).To(Equal("image/jpeg"))
	})

	It("fails to start when the image is missing", func() {
		src := camera.NewStillSource(filepath.Join(tmpDir, "missing.jpg"))
		Expect(src.Start(context.Background())).To(HaveOccurred())
	})
})

var _ = Describe("FeedSource", func() {
	var (
		tmpDir string
		path   string
		src    *camera.FeedSource
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		path = filepath.Join(tmpDir, "frame.jpg")
		src = camera.NewFeedSource(path, nil)
	})

	AfterEach(func() {
		Expect(src.Stop()).To(Succeed())
	})

	It("returns an existing frame immediately", func() {
		frame := encodeImage(false)
		Expect(os.WriteFile(path, frame, 0644)).To(Succeed())
		Expect(src.Start(context.Background())).To(Succeed())

		dataURL, err := src.Snapshot(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(dataURL).To(Equal(media.EncodeDataURL("image/jpeg", frame)))
	})

	It("picks up a frame written after start", func() {
		Expect(src.Start(context.Background())).To(Succeed())

		frame := encodeImage(false)
		Expect(os.WriteFile(path, frame, 0644)).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Eventually(func() (string, error) {
			return src.Snapshot(ctx)
		}).Should(Equal(media.EncodeDataURL("image/jpeg", frame)))
	})

	It("times out with ErrNoFrame when nothing arrives", func() {
		Expect(src.Start(context.Background())).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := src.Snapshot(ctx)
		Expect(errors.Is(err, camera.ErrNoFrame)).To(BeTrue())
	})

	It("ignores a frame that is only partly written", func() {
		frame := encodeImage(false)
		Expect(os.WriteFile(path, frame[:len(frame)/2], 0644)).To(Succeed())
		Expect(src.Start(context.Background())).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err := src.Snapshot(ctx)
		Expect(errors.Is(err, camera.ErrNoFrame)).To(BeTrue())
	})

	It("keeps the previous frame while the next one is being written", func() {
		frame := encodeImage(false)
		Expect(os.WriteFile(path, frame, 0644)).To(Succeed())
		Expect(src.Start(context.Background())).To(Succeed())

		Expect(os.WriteFile(path, frame[:len(frame)/2], 0644)).To(Succeed())

		want := media.EncodeDataURL("image/jpeg", frame)
		Consistently(func() (string, error) {
			return src.Snapshot(context.Background())
		}, 300*time.Millisecond, 20*time.Millisecond).Should(Equal(want))
	})

	It("releases a waiting snapshot when stopped", func() {
		Expect(src.Start(context.Background())).To(Succeed())

		errc := make(chan error, 1)
		go func() {
			_, err := src.Snapshot(context.Background())
			errc <- err
		}()

		Consistently(errc, 50*time.Millisecond).ShouldNot(Receive())
		Expect(src.Stop()).To(Succeed())

		var err error
		Eventually(errc, time.Second).Should(Receive(&err))
		Expect(err).To(MatchError(camera.ErrNotMounted))
	})

	It("reports not mounted after stop", func() {
		Expect(src.Start(context.Background())).To(Succeed())
		Expect(src.Stop()).To(Succeed())

		_, err := src.Snapshot(context.Background())
		Expect(err).To(MatchError(camera.ErrNotMounted))
	})
})
