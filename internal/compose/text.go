package compose

import "fmt"

// AchievementText builds the sentence printed under the honoree's name. Only
// ranks 1-3 get ordinal wording; every other value, nil included, reads as
// participation.
func AchievementText(rank *int, hackathonTitle, date string) string {
	if rank != nil {
		switch *rank {
		case 1:
			return fmt.Sprintf("for securing First Place in the %s held on %s", hackathonTitle, date)
		case 2:
			return fmt.Sprintf("for securing Second Place in the %s held on %s", hackathonTitle, date)
		case 3:
			return fmt.Sprintf("for securing Third Place in the %s held on %s", hackathonTitle, date)
		}
	}
	return fmt.Sprintf("for active participation in the %s held on %s", hackathonTitle, date)
}
