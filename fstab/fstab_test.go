// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package fstab_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/openstack-nfs/fstab"
	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/model/modelmocks"
)

func TestFstab(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fstab")
}

const existing = `# /etc/fstab: static file system information.
UUID=1234-abcd / ext4 errors=remount-ro 0 1
/swap.img	none	swap	sw	0	0
nfs-server:/old /var/lib/nova/instances nfs rw 0 0
`

var _ = Describe("Table", func() {
	var (
		mockctl *gomock.Controller
		logger  *modelmocks.MockLogger
		path    string
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		logger = modelmocks.NewLogger(mockctl)
		path = filepath.Join(GinkgoT().TempDir(), "fstab")
	})

	AfterEach(func() {
		mockctl.Finish()
	})

	Describe("Load", func() {
		It("Should treat a missing file as empty", func() {
			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(t.Entries()).To(BeEmpty())
			Expect(t.Path()).To(Equal(path))
		})

		It("Should parse entries and skip comments", func() {
			Expect(os.WriteFile(path, []byte(existing), 0644)).To(Succeed())

			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())

			entries := t.Entries()
			Expect(entries).To(HaveLen(3))
			Expect(entries[0]).To(Equal(fstab.Entry{Device: "UUID=1234-abcd", Mountpoint: "/", Type: "ext4", Options: "errors=remount-ro", Dump: 0, Pass: 1}))
			Expect(entries[2].Device).To(Equal("nfs-server:/old"))
		})

		It("Should unescape spaces in mountpoints", func() {
			Expect(os.WriteFile(path, []byte(`srv:/x /mnt/with\040space nfs rw 0 0`+"\n"), 0644)).To(Succeed())

			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())

			e, ok := t.EntryByMountpoint("/mnt/with space")
			Expect(ok).To(BeTrue())
			Expect(e.Device).To(Equal("srv:/x"))
		})
	})

	Describe("EntryByMountpoint", func() {
		It("Should find entries regardless of trailing slashes", func() {
			Expect(os.WriteFile(path, []byte(existing), 0644)).To(Succeed())
			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())

			e, ok := t.EntryByMountpoint("/var/lib/nova/instances/")
			Expect(ok).To(BeTrue())
			Expect(e.Device).To(Equal("nfs-server:/old"))

			_, ok = t.EntryByMountpoint("/srv/glance")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Remove and Add", func() {
		It("Should replace an entry while preserving other lines", func() {
			Expect(os.WriteFile(path, []byte(existing), 0600)).To(Succeed())
			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())

			Expect(t.Remove("/var/lib/nova/instances")).To(BeTrue())
			Expect(t.Remove("/var/lib/nova/instances")).To(BeFalse())

			spec := model.MountSpec{Device: "nfs-server:/export", Mountpoint: "/var/lib/nova/instances", FilesystemType: "nfs", Options: "rw", Timeout: time.Second}
			Expect(t.Add(fstab.NewEntry(spec))).To(Succeed())
			Expect(t.Save()).To(Succeed())

			content, err := os.ReadFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(Equal(`# /etc/fstab: static file system information.
UUID=1234-abcd / ext4 errors=remount-ro 0 1
/swap.img	none	swap	sw	0	0
nfs-server:/export /var/lib/nova/instances nfs rw 0 0
`))

			stat, err := os.Stat(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(stat.Mode().Perm()).To(Equal(os.FileMode(0600)))
		})

		It("Should refuse duplicate mountpoints", func() {
			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())

			e := fstab.Entry{Device: "a:/x", Mountpoint: "/mnt/x", Type: "nfs"}
			Expect(t.Add(e)).To(Succeed())
			Expect(t.Add(e)).To(MatchError(fstab.ErrDuplicateMountpoint))
			Expect(t.Entries()).To(HaveLen(1))
			Expect(t.Entries()[0].Options).To(Equal("defaults"))
		})

		It("Should require device, mountpoint and type", func() {
			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())

			Expect(t.Add(fstab.Entry{Mountpoint: "/mnt/x", Type: "nfs"})).To(HaveOccurred())
		})

		It("Should create the file on save when it did not exist", func() {
			t, err := fstab.Load(path, logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(t.Add(fstab.Entry{Device: "a:/x", Mountpoint: "/mnt/x", Type: "nfs", Options: "rw"})).To(Succeed())
			Expect(t.Save()).To(Succeed())

			content, err := os.ReadFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(Equal("a:/x /mnt/x nfs rw 0 0\n"))
		})
	})

	Describe("NewEntry", func() {
		It("Should default options", func() {
			e := fstab.NewEntry(model.MountSpec{Device: "a:/x", Mountpoint: "/mnt/x", FilesystemType: "nfs"})
			Expect(e.Options).To(Equal("defaults"))
			Expect(e.String()).To(Equal("a:/x /mnt/x nfs defaults 0 0"))
		})
	})
})
