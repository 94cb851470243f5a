// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatdock/internal/camera"
	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/panel"
	"github.com/jeranaias/chatdock/internal/util"
)

// =============================================================================
// UPLOAD
// =============================================================================

const uploadLongDesc string = `Upload an image or PDF and print the hosted URL(s).

Accepted files are .png, .jpg, .jpeg and .pdf, or only .pdf with --pdf.
The content must match the extension.

Examples:
  chatdock upload ~/Pictures/whiteboard.png
  chatdock upload --pdf --json report.pdf`

const uploadShortDesc string = "Upload a file"

type uploadCommander struct {
	root    *rootFlags
	jsonOut bool
}

type uploadResult struct {
	URLs []string `json:"urls"`
}

func newUploadCmd(root *rootFlags) *cobra.Command {
	cmder := &uploadCommander{root: root}

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: uploadShortDesc,
		Long:  uploadLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the URLs as JSON")

	return cmd
}

func (c *uploadCommander) run(ctx context.Context, cmd *cobra.Command, path string) error {
	cfg, err := c.root.load(cmd)
	if err != nil {
		return err
	}
	log := consoleLogger(cfg, cmd.ErrOrStderr())
	defer log.Sync()

	file, err := media.Open(util.ExpandHome(path))
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			return &UsageError{Reason: err.Error()}
		}
		return &CommandError{Command: "upload", Err: err}
	}

	p := newPanel(cfg, newService(cfg, log), panel.PolicySurface, log)
	defer p.Close()

	if err := p.UploadFile(ctx, file); err != nil {
		if errors.Is(err, panel.ErrUnsupportedFile) {
			return &UsageError{Reason: err.Error()}
		}
		return &CommandError{Command: "upload", Err: err}
	}
	if st := p.Snapshot(); st.Upload == panel.RequestFailed {
		return &CommandError{Command: "upload", Err: fmt.Errorf("%w: %s", errRequestFailed, st.LastError)}
	}
	return printURLs(cmd, p, c.jsonOut)
}

// printURLs prints the image URLs in the conversation, one per line.
func printURLs(cmd *cobra.Command, p *panel.Panel, jsonOut bool) error {
	res := uploadResult{URLs: []string{}}
	for _, m := range p.Conversation().Messages() {
		if part := m.Part(); part.IsImage() {
			res.URLs = append(res.URLs, part.URL())
		}
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	for _, u := range res.URLs {
		fmt.Fprintln(out, u)
	}
	return nil
}

// =============================================================================
// CAPTURE
// =============================================================================

const captureLongDesc string = `Take one frame from the configured camera source and upload it
as captured-image.jpg.

Examples:
  chatdock capture --camera-still ~/Pictures/desk.png
  chatdock capture --camera-feed /run/webcam/latest.jpg`

const captureShortDesc string = "Capture and upload a camera frame"

// frameTimeout bounds the wait for the first frame of a feed.
const frameTimeout = 10 * time.Second

type captureCommander struct {
	root    *rootFlags
	jsonOut bool
}

func newCaptureCmd(root *rootFlags) *cobra.Command {
	cmder := &captureCommander{root: root}

	cmd := &cobra.Command{
		Use:   "capture",
		Short: captureShortDesc,
		Long:  captureLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the URL as JSON")

	return cmd
}

func (c *captureCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.root.load(cmd)
	if err != nil {
		return err
	}
	log := consoleLogger(cfg, cmd.ErrOrStderr())
	defer log.Sync()

	src := cameraSource(cfg, log)
	if src == nil {
		return &UsageError{Reason: "no camera configured (set --camera-feed or --camera-still)"}
	}

	var shot string
	ctl := camera.NewControl(src, func(dataURL string) { shot = dataURL }, log)
	if err := ctl.Mount(ctx); err != nil {
		return &CommandError{Command: "capture", Err: err}
	}
	defer ctl.Unmount()

	frameCtx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()
	if err := ctl.Capture(frameCtx); err != nil {
		return &CommandError{Command: "capture", Err: err}
	}

	p := newPanel(cfg, newService(cfg, log), panel.PolicySurface, log)
	defer p.Close()

	p.OpenModal()
	p.UseCamera()
	if err := p.CapturePhoto(ctx, shot); err != nil {
		return &CommandError{Command: "capture", Err: err}
	}
	if st := p.Snapshot(); st.Capture == panel.RequestFailed {
		return &CommandError{Command: "capture", Err: fmt.Errorf("%w: %s", errRequestFailed, st.LastError)}
	}
	return printURLs(cmd, p, c.jsonOut)
}
