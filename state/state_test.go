// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/segmentio/ksuid"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/model/modelmocks"
)

func TestState(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "State")
}

var _ = Describe("DirectoryStore", func() {
	var (
		mockCtrl *gomock.Controller
		logger   *modelmocks.MockLogger
		tempDir  string
		store    *DirectoryStore
		err      error
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		logger = modelmocks.NewLogger(mockCtrl)
		tempDir = filepath.Join(GinkgoT().TempDir(), "state")

		store, err = NewDirectoryStore(tempDir, 3, logger)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Describe("NewDirectoryStore", func() {
		It("Should require a directory", func() {
			_, err := NewDirectoryStore("", 0, logger)
			Expect(err).To(MatchError(ContainSubstring("cannot be empty")))
		})

		It("Should clean the directory path", func() {
			s, err := NewDirectoryStore("/some//path/../clean/./path", 0, logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Directory()).To(Equal("/some/clean/path"))
			Expect(s.retain).To(Equal(DefaultRetainEvents))
		})
	})

	Describe("Load and Save", func() {
		It("Should start with a fresh unit", func() {
			s, err := store.Load()
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Phase).To(Equal(model.PhaseUninstalled))
			Expect(s.Consumers).ToNot(BeNil())
		})

		It("Should persist state", func() {
			s := model.NewState()
			s.Phase = model.PhaseReady
			s.ConfigHash = "abc"
			s.Consumers[model.GlanceConsumer] = model.ConsumerPublished

			Expect(store.Save(s)).To(Succeed())
			Expect(s.Updated.IsZero()).To(BeFalse())

			loaded, err := store.Load()
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded.Phase).To(Equal(model.PhaseReady))
			Expect(loaded.ConfigHash).To(Equal("abc"))
			Expect(loaded.Consumer(model.GlanceConsumer)).To(Equal(model.ConsumerPublished))

			raw, err := os.ReadFile(filepath.Join(tempDir, "state.json"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"phase": "ready"`))

			entries, err := os.ReadDir(tempDir)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("Should detect corrupt state", func() {
			Expect(os.MkdirAll(tempDir, 0700)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tempDir, "state.json"), []byte(`{"phase":"bogus"}`), 0600)).To(Succeed())

			_, err := store.Load()
			Expect(err).To(MatchError(ContainSubstring("corrupt state")))
		})
	})

	Describe("Events", func() {
		It("Should reject invalid event ids", func() {
			event := model.NewStepEvent(model.EffectConfigureFstab, "")
			event.EventID = "../../etc/passwd"

			Expect(store.RecordEvent(event)).To(MatchError(ContainSubstring("invalid event ID")))
		})

		It("Should record and prune events in time order", func() {
			var ids []string
			start := time.Now().Add(-time.Hour)
			for i, step := range []model.EffectKind{model.EffectEnsureDependency, model.EffectConfigureFstab, model.EffectMountAndPrepare, model.EffectConfigureConsumer, model.EffectAssessStatus} {
				ts := start.Add(time.Duration(i) * time.Minute)
				id, err := ksuid.NewRandomWithTime(ts)
				Expect(err).ToNot(HaveOccurred())

				event := model.NewStepEvent(step, "")
				event.EventID = id.String()
				event.TimeStamp = ts.UTC()
				event.Changed = true
				Expect(store.RecordEvent(event)).To(Succeed())
				ids = append(ids, event.EventID)
			}

			events, err := store.Events(0)
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(HaveLen(3))

			var got []string
			for _, e := range events {
				got = append(got, e.EventID)
			}
			Expect(got).To(Equal(ids[2:]))

			limited, err := store.Events(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(limited).To(HaveLen(1))
			Expect(limited[0].EventID).To(Equal(events[2].EventID))
		})

		It("Should skip unreadable events", func() {
			Expect(store.RecordEvent(model.NewStepEvent(model.EffectAssessStatus, ""))).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tempDir, "events", "2zzzzzzzzzzzzzzzzzzzzzzzzzz.event"), []byte("{"), 0600)).To(Succeed())

			events, err := store.Events(0)
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(HaveLen(1))
		})

		It("Should handle a missing store", func() {
			events, err := store.Events(10)
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(BeEmpty())
		})
	})
})

var _ = Describe("MemoryStore", func() {
	It("Should isolate stored state", func() {
		initial := model.NewState()
		initial.Phase = model.PhaseInstalled
		store := NewMemoryStore(initial)

		s, err := store.Load()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Phase).To(Equal(model.PhaseInstalled))

		s.Phase = model.PhaseReady
		again, _ := store.Load()
		Expect(again.Phase).To(Equal(model.PhaseInstalled))

		Expect(store.Save(s)).To(Succeed())
		again, _ = store.Load()
		Expect(again.Phase).To(Equal(model.PhaseReady))
	})

	It("Should limit events", func() {
		store := NewMemoryStore(nil)
		for range 5 {
			Expect(store.RecordEvent(model.NewStepEvent(model.EffectAssessStatus, ""))).To(Succeed())
		}

		all, err := store.Events(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(all).To(HaveLen(5))

		some, err := store.Events(2)
		Expect(err).ToNot(HaveOccurred())
		Expect(some).To(HaveLen(2))
		Expect(some[1]).To(Equal(all[4]))
	})
})
