package albums

import "time"

// Seed stores the demo albums shown on a fresh dashboard.
func Seed(repo *Repository) {
	now := repo.now().UTC()
	day := 24 * time.Hour

	repo.Put(Album{
		ID:                 "album_demo_1",
		Title:              "Summer Memories",
		Status:             StatusCompleted,
		UploadedPhotoCount: 8,
		GeneratedImages: []GeneratedImage{
			{ID: "img_1", URL: "/samples/graduation-warm.jpg", StyleID: "graduation_warm_01", CreatedAt: now},
			{ID: "img_2", URL: "/samples/family-warm.jpg", StyleID: "family_warm_01", CreatedAt: now},
			{ID: "img_3", URL: "/samples/portrait-soft.jpg", StyleID: "portrait_soft_01", CreatedAt: now},
			{ID: "img_4", URL: "/samples/outdoor-golden.jpg", StyleID: "outdoor_golden_01", CreatedAt: now},
		},
		CreatedAt: now.Add(-3 * day),
		UpdatedAt: now.Add(-day),
	})
	repo.Put(Album{
		ID:                 "album_demo_2",
		Title:              "Birthday Celebration",
		Status:             StatusInProgress,
		UploadedPhotoCount: 5,
		CreatedAt:          now.Add(-day),
		UpdatedAt:          now,
	})
}
