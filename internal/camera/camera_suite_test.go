// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package camera_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCamera(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Camera Capture Suite")
}
