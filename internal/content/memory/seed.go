package memory

import (
	"fmt"
	"time"

	"io.winapps.thankasoldier/internal/blob"
	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/portabletext"
)

// NewSeededStore returns a store with a small demo dataset so the front end
// renders something before a real backend is configured. Demo images are
// served from staticBaseURL.
func NewSeededStore(blobs blob.Storage, staticBaseURL string) *Store {
	s := NewStore(blobs)
	_ = s.Seed(demoDocuments(staticBaseURL)...)
	return s
}

func demoDocuments(base string) []any {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}

	docs := []any{
		content.Memorial{
			ID: "memorial-james-okafor", Name: "Cpl. James Okafor", Role: "Combat Medic", Unit: "2nd Battalion",
			Status: content.StatusFallen, BirthDate: "1988-04-12", DeathDate: "2014-09-03",
			Biography: "James volunteered for every evacuation run and never left a comrade behind.",
			Image:     &content.ImageRef{URL: base + "/memorials/okafor.jpg"},
			Approved:  true, Featured: true,
		},
		content.Memorial{
			ID: "memorial-amara-bello", Name: "Lt. Amara Bello", Role: "Signals Officer", Unit: "Signals Regiment",
			Status: content.StatusServing, BirthDate: "1991-01-30",
			Biography: "Amara keeps the lines open for units deployed across the northern sector.",
			Approved:  true, Featured: true,
		},
		content.Memorial{
			ID: "memorial-samuel-adeyemi", Name: "Sgt. Samuel Adeyemi", Role: "Platoon Sergeant", Unit: "Rangers",
			Status: content.StatusGallantry, Biography: "Decorated for holding a river crossing under fire.",
			Approved: true,
		},
		content.Tribute{
			ID: "tribute-1", Author: "Grace", Relationship: "Sister", MemorialID: "memorial-james-okafor",
			Message: "You were the bravest of us all. We miss you every day.", Approved: true, SubmittedAt: day(2023, 9, 3),
		},
		content.Tribute{
			ID: "tribute-2", Author: "Maj. Ike", Relationship: "Commanding Officer", MemorialID: "memorial-james-okafor",
			Message: "A soldier's soldier. His courage saved lives.", Approved: true, SubmittedAt: day(2022, 11, 11),
		},
		content.GuestbookEntry{
			ID: "guestbook-1", Author: "Tunde", Location: "Lagos",
			Message: "Thank you to every soldier who serves.", Approved: true, SubmittedAt: day(2024, 1, 15),
		},
		content.TimelineEvent{
			ID: "event-founding", Title: "Memorial foundation established", Date: "2015-05-01",
			EventType: content.EventMilestone, Description: portabletext.FromString("The foundation opened its first memorial wall."),
		},
		content.TimelineEvent{
			ID: "event-okafor", Title: "Remembrance service", Date: "2016-09-03", MemorialID: "memorial-james-okafor",
			EventType: content.EventMemorial, Description: portabletext.FromString("Annual service held in honour of Cpl. Okafor."),
		},
		content.MediaAsset{
			ID: "media-music", Title: "Last Post", MediaType: content.MediaAudio, Category: content.CategoryBackgroundMusic,
			OtherFile: &content.FileRef{URL: base + "/audio/last-post.mp3"}, CreatedAt: day(2020, 1, 1),
		},
	}

	for i := 1; i <= 8; i++ {
		docs = append(docs, content.MediaAsset{
			ID:        fmt.Sprintf("media-wall-%d", i),
			Title:     fmt.Sprintf("Wall photo %d", i),
			MediaType: content.MediaImage,
			Category:  content.CategoryMemorialPhotos,
			ImageFile: &content.ImageRef{URL: fmt.Sprintf("%s/wall/%d.jpg", base, i)},
			CreatedAt: day(2021, time.Month(i), 1),
		})
	}

	return docs
}
