// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package ownership

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"
)

func ownerIDs(stat os.FileInfo) (int, int, error) {
	ssys, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return -1, -1, fmt.Errorf("could not get platform stat information")
	}

	return int(ssys.Uid), int(ssys.Gid), nil
}

func fileOwner(stat os.FileInfo) (owner string, group string, mode string, err error) {
	uid, gid, err := ownerIDs(stat)
	if err != nil {
		return "", "", "", err
	}

	owner = strconv.Itoa(uid)
	group = strconv.Itoa(gid)

	grp, err := user.LookupGroupId(group)
	if err == nil {
		group = grp.Name
	}

	usr, err := user.LookupId(owner)
	if err == nil {
		owner = usr.Username
	}

	mode = fmt.Sprintf("%04o", stat.Mode()&os.ModePerm)

	return owner, group, mode, nil
}
