// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jeranaias/chatdock/internal/api"
	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/panel"
)

var _ = Describe("Panel", func() {
	var (
		ctx context.Context
		svc *fakeService
		p   *panel.Panel
	)

	BeforeEach(func() {
		ctx = context.Background()
		svc = &fakeService{}
		p = panel.New(svc, panel.Options{})
	})

	AfterEach(func() {
		p.Close()
	})

	Describe("sending a message", func() {
		It("ignores blank input", func() {
			p.SetInput("   \n\t ")
			job, err := p.BeginSend()

			Expect(err).NotTo(HaveOccurred())
			Expect(job).To(BeNil())
			Expect(svc.sends()).To(Equal(0))

			s := p.Snapshot()
			Expect(s.Messages).To(BeEmpty())
			Expect(s.Input).To(Equal("   \n\t "))
			Expect(s.Send).To(Equal(panel.RequestIdle))
		})

		It("appends the user message before the reply resolves", func() {
			svc.sendResp = textReply([]string{"Hi"})
			p.SetInput("  hello  ")

			job, err := p.BeginSend()
			Expect(err).NotTo(HaveOccurred())

			s := p.Snapshot()
			Expect(s.Messages).To(HaveLen(1))
			Expect(s.Messages[0].Role).To(Equal(model.RoleUser))
			Expect(s.Messages[0].Text()).To(Equal("  hello  "))
			Expect(s.Input).To(BeEmpty())
			Expect(s.Loading()).To(BeTrue())
			Expect(s.Send).To(Equal(panel.RequestPending))

			job(ctx)

			s = p.Snapshot()
			Expect(s.Loading()).To(BeFalse())
			Expect(s.Send).To(Equal(panel.RequestSucceeded))
			Expect(s.Messages).To(HaveLen(2))
			Expect(s.Messages[1].Role).To(Equal(model.RoleAssistant))
			Expect(s.Messages[1].Text()).To(Equal("Hi"))
		})

		It("sends the full history including the new message", func() {
			svc.sendResp = textReply([]string{"one"})
			p.SetInput("first")
			Expect(p.SendMessage(ctx)).To(Succeed())
			p.SetInput("second")
			Expect(p.SendMessage(ctx)).To(Succeed())

			Expect(svc.sendCalls).To(HaveLen(2))
			last := svc.sendCalls[1]
			Expect(last).To(HaveLen(3))
			Expect(last[0].Text()).To(Equal("first"))
			Expect(last[1].Text()).To(Equal("one"))
			Expect(last[2].Text()).To(Equal("second"))
		})

		It("joins parts with a space and sub-messages with a blank line", func() {
			svc.sendResp = textReply([]string{"a", "b"}, []string{"c"})
			p.SetInput("q")
			Expect(p.SendMessage(ctx)).To(Succeed())

			reply, ok := p.Conversation().Last(model.RoleAssistant)
			Expect(ok).To(BeTrue())
			Expect(reply.Text()).To(Equal("a b\n\nc"))
		})

		It("appends nothing for an empty reply", func() {
			svc.sendResp = &api.SendResponse{}
			p.SetInput("q")
			Expect(p.SendMessage(ctx)).To(Succeed())

			s := p.Snapshot()
			Expect(s.Messages).To(HaveLen(1))
			Expect(s.Send).To(Equal(panel.RequestSucceeded))
		})

		It("keeps the optimistic message and stays silent on failure", func() {
			svc.sendErr = errors.New("connection refused")
			p.SetInput("hello")
			Expect(p.SendMessage(ctx)).To(Succeed())

			s := p.Snapshot()
			Expect(s.Messages).To(HaveLen(1))
			Expect(s.Messages[0].Text()).To(Equal("hello"))
			Expect(s.Send).To(Equal(panel.RequestFailed))
			Expect(s.Loading()).To(BeFalse())
			Expect(s.LastError).To(BeEmpty())
			Expect(svc.sends()).To(Equal(1))
		})
	})

	Describe("uploading a file", func() {
		It("appends one image message for image_url", func() {
			svc.uploadResp = &api.UploadResponse{ImageURL: "https://x/a.jpg"}
			Expect(p.UploadFile(ctx, pngFile)).To(Succeed())

			s := p.Snapshot()
			Expect(s.FileSelected).To(BeTrue())
			Expect(s.Upload).To(Equal(panel.RequestSucceeded))
			Expect(s.Messages).To(HaveLen(1))
			Expect(s.Messages[0].Role).To(Equal(model.RoleUser))
			Expect(s.Messages[0].Part().URL()).To(Equal("https://x/a.jpg"))
		})

		It("appends one image message per image_urls entry in order", func() {
			svc.uploadResp = &api.UploadResponse{ImageURLs: []string{"u1", "u2"}}
			Expect(p.UploadFile(ctx, pdfFile)).To(Succeed())

			s := p.Snapshot()
			Expect(s.Messages).To(HaveLen(2))
			Expect(s.Messages[0].Part().URL()).To(Equal("u1"))
			Expect(s.Messages[1].Part().URL()).To(Equal("u2"))
		})

		It("appends nothing when the response has no URLs", func() {
			svc.uploadResp = &api.UploadResponse{}
			Expect(p.UploadFile(ctx, pngFile)).To(Succeed())
			Expect(p.Snapshot().Messages).To(BeEmpty())
		})

		It("rejects a missing file but records the selection", func() {
			Expect(p.UploadFile(ctx, nil)).To(MatchError(panel.ErrNoFile))

			s := p.Snapshot()
			Expect(s.FileSelected).To(BeTrue())
			Expect(s.Upload).To(Equal(panel.RequestIdle))
			Expect(svc.uploads()).To(Equal(0))
		})

		It("rejects images in PDF-only mode", func() {
			pdfPanel := panel.New(svc, panel.Options{PDFOnly: true})
			defer pdfPanel.Close()

			Expect(pdfPanel.AcceptList()).To(Equal(".pdf"))
			Expect(pdfPanel.Snapshot().ShowUploadPrompt()).To(BeTrue())

			err := pdfPanel.UploadFile(ctx, pngFile)
			Expect(errors.Is(err, panel.ErrUnsupportedFile)).To(BeTrue())
			Expect(svc.uploads()).To(Equal(0))
			Expect(pdfPanel.Snapshot().ShowUploadPrompt()).To(BeFalse())
		})

		It("logs upload failures silently", func() {
			svc.uploadErr = errors.New("413 too large")
			Expect(p.UploadFile(ctx, pdfFile)).To(Succeed())

			s := p.Snapshot()
			Expect(s.Upload).To(Equal(panel.RequestFailed))
			Expect(s.Messages).To(BeEmpty())
			Expect(s.LastError).To(BeEmpty())
		})
	})

	Describe("capturing a photo", func() {
		BeforeEach(func() {
			Expect(p.OpenModal()).To(BeTrue())
			Expect(p.UseCamera()).To(BeTrue())
		})

		It("uploads captured-image.jpg and appends one image message", func() {
			svc.uploadResp = &api.UploadResponse{ImageURLs: []string{"u1", "u2"}}

			job, err := p.BeginCapture(jpegDataURL())
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Snapshot().CameraOpen()).To(BeTrue())
			Expect(p.Snapshot().Capture).To(Equal(panel.RequestPending))

			job(ctx)

			s := p.Snapshot()
			Expect(s.CameraOpen()).To(BeFalse())
			Expect(s.Mode).To(Equal(panel.ModeIdle))
			Expect(s.Capture).To(Equal(panel.RequestSucceeded))
			Expect(s.Messages).To(HaveLen(1))
			Expect(s.Messages[0].Part().URL()).To(Equal("u1"))

			Expect(svc.uploadCalls).To(HaveLen(1))
			Expect(svc.uploadCalls[0].Name).To(Equal("captured-image.jpg"))
			Expect(svc.uploadCalls[0].ContentType).To(Equal("image/jpeg"))
		})

		It("closes the camera when the upload fails", func() {
			svc.uploadErr = errors.New("boom")
			Expect(p.CapturePhoto(ctx, jpegDataURL())).To(Succeed())

			s := p.Snapshot()
			Expect(s.CameraOpen()).To(BeFalse())
			Expect(s.Capture).To(Equal(panel.RequestFailed))
			Expect(s.Messages).To(BeEmpty())
		})

		It("treats a response without URLs as a failure", func() {
			svc.uploadResp = &api.UploadResponse{}
			Expect(p.CapturePhoto(ctx, jpegDataURL())).To(Succeed())

			s := p.Snapshot()
			Expect(s.CameraOpen()).To(BeFalse())
			Expect(s.Capture).To(Equal(panel.RequestFailed))
		})

		It("closes the camera when the data URL cannot be decoded", func() {
			err := p.CapturePhoto(ctx, "data:image/jpeg;base64,@@@")
			Expect(err).To(HaveOccurred())

			s := p.Snapshot()
			Expect(s.CameraOpen()).To(BeFalse())
			Expect(s.Capture).To(Equal(panel.RequestFailed))
			Expect(svc.uploads()).To(Equal(0))
		})
	})

	Describe("mode transitions", func() {
		It("follows Idle -> ModalOpen -> CameraOpen -> Idle", func() {
			Expect(p.Snapshot().Mode).To(Equal(panel.ModeIdle))
			Expect(p.OpenModal()).To(BeTrue())
			Expect(p.Snapshot().ModalOpen()).To(BeTrue())

			Expect(p.UseCamera()).To(BeTrue())
			s := p.Snapshot()
			Expect(s.CameraOpen()).To(BeTrue())
			Expect(s.ModalOpen()).To(BeFalse())

			Expect(p.CloseCamera()).To(BeTrue())
			Expect(p.Snapshot().Mode).To(Equal(panel.ModeIdle))
		})

		It("rejects every other transition", func() {
			Expect(p.CloseModal()).To(BeFalse())
			Expect(p.UseCamera()).To(BeFalse())
			Expect(p.CloseCamera()).To(BeFalse())

			Expect(p.OpenModal()).To(BeTrue())
			Expect(p.OpenModal()).To(BeFalse())
			Expect(p.CloseCamera()).To(BeFalse())

			Expect(p.UseCamera()).To(BeTrue())
			Expect(p.OpenModal()).To(BeFalse())
			Expect(p.CloseModal()).To(BeFalse())
			Expect(p.Snapshot().Mode).To(Equal(panel.ModeCameraOpen))
		})

		It("closes the modal without side effects", func() {
			Expect(p.OpenModal()).To(BeTrue())
			Expect(p.CloseModal()).To(BeTrue())

			s := p.Snapshot()
			Expect(s.Mode).To(Equal(panel.ModeIdle))
			Expect(s.Messages).To(BeEmpty())
			Expect(s.Loading()).To(BeFalse())
		})
	})

	Describe("concurrency", func() {
		BeforeEach(func() {
			svc.gate = make(chan struct{})
			svc.sendResp = textReply([]string{"ok"})
			svc.uploadResp = &api.UploadResponse{ImageURL: "u"}
		})

		It("rejects a second action while one is pending", func() {
			p.SetInput("first")
			job, err := p.BeginSend()
			Expect(err).NotTo(HaveOccurred())

			done := make(chan struct{})
			go func() {
				defer close(done)
				job(ctx)
			}()

			Eventually(svc.sends).Should(Equal(1))
			Expect(p.Snapshot().Loading()).To(BeTrue())

			p.SetInput("second")
			_, err = p.BeginSend()
			Expect(err).To(MatchError(panel.ErrBusy))
			_, err = p.BeginUpload(pngFile)
			Expect(err).To(MatchError(panel.ErrBusy))

			s := p.Snapshot()
			Expect(s.Messages).To(HaveLen(1))
			Expect(s.Input).To(Equal("second"))

			svc.gate <- struct{}{}
			Eventually(done).Should(BeClosed())
			Expect(p.Snapshot().Loading()).To(BeFalse())
			Expect(p.Snapshot().Messages).To(HaveLen(2))
		})

		It("closes the camera when a capture is rejected as busy", func() {
			Expect(p.OpenModal()).To(BeTrue())
			Expect(p.UseCamera()).To(BeTrue())

			p.SetInput("pending")
			job, err := p.BeginSend()
			Expect(err).NotTo(HaveOccurred())
			go job(ctx)

			_, err = p.BeginCapture(jpegDataURL())
			Expect(err).To(MatchError(panel.ErrBusy))
			Expect(p.Snapshot().CameraOpen()).To(BeFalse())

			svc.gate <- struct{}{}
			Eventually(func() bool { return p.Snapshot().Loading() }).Should(BeFalse())
		})

		It("discards results that arrive after Close", func() {
			svc.gate = nil
			p.SetInput("hello")
			job, err := p.BeginSend()
			Expect(err).NotTo(HaveOccurred())

			p.Close()
			job(ctx)

			s := p.Snapshot()
			Expect(s.Messages).To(HaveLen(1))
			Expect(s.Send).To(Equal(panel.RequestPending))

			_, err = p.BeginSend()
			Expect(err).To(MatchError(panel.ErrClosed))
		})

		It("cancels in-flight jobs on Close", func() {
			p.SetInput("hello")
			job, err := p.BeginSend()
			Expect(err).NotTo(HaveOccurred())

			done := make(chan struct{})
			go func() {
				defer close(done)
				job(ctx)
			}()
			Eventually(svc.sends).Should(Equal(1))

			p.Close()
			Eventually(done).Should(BeClosed())
			Expect(p.Snapshot().Messages).To(HaveLen(1))
		})
	})

	Describe("error policy", func() {
		It("surfaces failures when configured and clears them on the next action", func() {
			surfacing := panel.New(svc, panel.Options{ErrorPolicy: panel.PolicySurface})
			defer surfacing.Close()

			svc.sendErr = errors.New("timeout")
			surfacing.SetInput("hi")
			Expect(surfacing.SendMessage(ctx)).To(Succeed())
			Expect(surfacing.Snapshot().LastError).To(Equal("send failed: timeout"))

			svc.sendErr = nil
			svc.sendResp = textReply([]string{"ok"})
			surfacing.SetInput("again")
			job, err := surfacing.BeginSend()
			Expect(err).NotTo(HaveOccurred())
			Expect(surfacing.Snapshot().LastError).To(BeEmpty())
			job(ctx)
		})
	})
})
