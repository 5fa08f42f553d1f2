package notify

import (
	"github.com/tskinner/inkwell/internal/model"
	"github.com/tskinner/inkwell/internal/push"
)

const iconPath = "/icon.png"

// PostCreated builds the confirmation message sent to a post's author.
func PostCreated(post *model.Post) push.Payload {
	return push.Payload{
		Title: "New blog created: " + post.Title,
		Body:  "Your blog has been published successfully.",
		Icon:  iconPath,
		Data:  map[string]int64{"post_id": post.ID},
	}
}

// AdminPostCreated builds the message sent to admins when another user
// publishes a post.
func AdminPostCreated(post *model.Post, author *model.User) push.Payload {
	return push.Payload{
		Title: "New blog by " + author.Name,
		Body:  `"` + post.Title + `" was just published.`,
		Icon:  iconPath,
		Data:  map[string]int64{"post_id": post.ID, "author_id": author.ID},
	}
}

// TestMessage builds the payload for the manual push test endpoint.
func TestMessage() push.Payload {
	return push.Payload{
		Title: "Web Push Test",
		Body:  "This is a test notification.",
		Icon:  iconPath,
	}
}
