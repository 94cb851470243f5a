// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/panel"
	"github.com/jeranaias/chatdock/internal/render"
)

const askLongDesc string = `Send one message and print the reply.

The reply is formatted for the terminal when stdout is a TTY and printed
as plain text otherwise. Failures are reported and set a non-zero exit
code.

Examples:
  chatdock ask "Summarize the attached invoice"
  chatdock ask --json what time is it`

const askShortDesc string = "Send a single message"

type askCommander struct {
	root    *rootFlags
	jsonOut bool
}

type askResult struct {
	Reply    string `json:"reply"`
	Messages int    `json:"messages"`
}

func newAskCmd(root *rootFlags) *cobra.Command {
	cmder := &askCommander{root: root}

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the reply as JSON")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, text string) error {
	if strings.TrimSpace(text) == "" {
		return &UsageError{Reason: "message is blank"}
	}
	cfg, err := c.root.load(cmd)
	if err != nil {
		return err
	}
	log := consoleLogger(cfg, cmd.ErrOrStderr())
	defer log.Sync()

	p := newPanel(cfg, newService(cfg, log), panel.PolicySurface, log)
	defer p.Close()

	p.SetInput(text)
	if err := p.SendMessage(ctx); err != nil {
		return &CommandError{Command: "ask", Err: err}
	}
	st := p.Snapshot()
	if st.Send == panel.RequestFailed {
		return &CommandError{Command: "ask", Err: fmt.Errorf("%w: %s", errRequestFailed, st.LastError)}
	}

	// An empty response leaves no reply; that is not an error.
	reply, _ := p.Conversation().Last(model.RoleAssistant)
	out := cmd.OutOrStdout()

	switch {
	case c.jsonOut:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(askResult{Reply: reply.Text(), Messages: len(st.Messages)})
	case isTerminal(out):
		fmt.Fprintln(out, render.Terminal(reply.Part(), terminalWidth(out)))
	default:
		fmt.Fprintln(out, render.Plain(reply.Part()))
	}
	return nil
}
