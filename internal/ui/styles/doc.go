// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling of the chatdock terminal UI.

Colors are Lip Gloss AdaptiveColor values so the same palette works on
light and dark terminals.

# Colors (colors.go)

	Purple  - header, modal border, focus
	Cyan    - brand, camera view
	Emerald - success
	Amber   - pending, upload prompt
	Rose    - errors

User and assistant bubbles have their own background, foreground and
border tokens.

# Theme (theme.go)

Theme groups the styles of the chat screen: header, bubbles, loading row,
input box, upload modal, camera view and status bar.

# Profile (profile.go)

Configure applies the [ui] theme and no_color settings, and the NO_COLOR
environment variable, to the default renderer before a Theme is built:

	theme := styles.Configure(cfg.UI.Theme, cfg.UI.NoColor)
	theme.SetSize(width, height)
*/
package styles
