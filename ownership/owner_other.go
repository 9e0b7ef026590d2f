// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package ownership

import (
	"fmt"
	"os"
)

func ownerIDs(_ os.FileInfo) (int, int, error) {
	return -1, -1, fmt.Errorf("ownership is not supported on this platform")
}

func fileOwner(_ os.FileInfo) (string, string, string, error) {
	return "", "", "", fmt.Errorf("ownership is not supported on this platform")
}
