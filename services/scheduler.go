// services/scheduler.go
package services

import (
	"log"
	"slices"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// StartReconciler runs the back-reference reconciler every minute. Tribe
// activeBounties/completedBounties are derived from the bounty collection,
// so any drift (manual edits, imports) is repaired here rather than trusted.
func (s *BountyService) StartReconciler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(s.reconcileTribeBounties),
	)
}

func (s *BountyService) reconcileTribeBounties() {
	s.mu.Lock()
	defer s.mu.Unlock()

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()

	active := map[string][]string{}
	completed := map[string][]string{}
	for i := range bounties {
		b := &bounties[i]
		if b.TribeID == nil || *b.TribeID == "" {
			continue
		}
		if b.Status == models.StatusRewarded {
			completed[*b.TribeID] = append(completed[*b.TribeID], b.ID)
		} else {
			active[*b.TribeID] = append(active[*b.TribeID], b.ID)
		}
	}

	changed := false
	for i := range tribes {
		tribe := &tribes[i]
		wantActive := active[tribe.ID]
		if wantActive == nil {
			wantActive = []string{}
		}
		wantCompleted := completed[tribe.ID]
		if wantCompleted == nil {
			wantCompleted = []string{}
		}
		if !slices.Equal(tribe.ActiveBounties, wantActive) {
			tribe.ActiveBounties = wantActive
			changed = true
		}
		if !slices.Equal(tribe.CompletedBounties, wantCompleted) {
			tribe.CompletedBounties = wantCompleted
			changed = true
		}
	}

	if !changed {
		return
	}
	if err := s.Tribes.SaveAll(tribes); err != nil {
		log.Printf("[Reconciler] Failed to save tribes: %v", err)
		return
	}
	log.Printf("✅ Reconciled tribe bounty references across %d tribe(s)", len(tribes))
}

// StartSnapshotBackups uploads both collection files to object storage on a
// fixed interval. No-op unless the R2 client was initialized.
func StartSnapshotBackups(bountiesPath, tribesPath, prefix string, interval time.Duration) {
	if !utils.R2Enabled() {
		log.Println("⚠️  Snapshot backups requested but R2 is not configured, skipping")
		return
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			stamp := time.Now().UTC().Format("20060102T150405Z")
			for _, path := range []string{bountiesPath, tribesPath} {
				url, err := utils.UploadSnapshot(path, prefix, stamp)
				if err != nil {
					log.Printf("[Backup] Failed to upload %s: %v", path, err)
					continue
				}
				log.Printf("✅ Backed up %s to %s", path, url)
			}
		}),
	)
}
