// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message content parts into display output.
//
// Text recognizes three inline markers, applied per line in a fixed order:
//
//	**text**   bold and italic
//	*text*     italic
//	__text__   bold
//
// Nothing else is interpreted. Formatting produces styled spans rather than
// markup strings, so every target escapes or styles text itself and user
// content can never inject markup. Targets: HTML, Terminal, Plain.
package render
