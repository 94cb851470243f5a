// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatdock command line.
//
// Commands:
//
//	chatdock            Terminal UI
//	chatdock serve      Browser front end
//	chatdock ask        Send one message and print the reply
//	chatdock upload     Upload a file and print its URL(s)
//	chatdock capture    Upload a frame from the camera source
//	chatdock config     Show or write the configuration file
//	chatdock version    Version information
//
// Errors are returned from commands and mapped to exit codes by
// ExitCode; nothing below Execute calls os.Exit.
package cli
