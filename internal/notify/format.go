package notify

import (
	"fmt"

	"github.com/taskwire/taskwire/internal/domain"
)

// Format maps an event to its human-readable message and the structured
// payload clients use for deep-linking. It is pure and total: identical
// inputs always produce identical outputs, and unknown event types fall back
// to a generic activity message instead of failing, because formatting sits
// on the critical path of every notification.
//
// Events carrying a project id are treated as project activity; events
// without one are stand-alone task events.
func Format(eventType domain.EventType, data domain.Payload) (string, domain.Payload) {
	if data[domain.PayloadProjectID] != "" {
		return formatProjectEvent(eventType, data)
	}
	return formatTaskEvent(eventType, data)
}

func formatProjectEvent(eventType domain.EventType, data domain.Payload) (string, domain.Payload) {
	projectTitle := data[domain.PayloadProjectTitle]
	taskTitle := data[domain.PayloadTaskTitle]

	projectPayload := pick(data, domain.PayloadProjectID, domain.PayloadProjectTitle)
	taskPayload := pick(data, domain.PayloadTaskID, domain.PayloadTaskTitle, domain.PayloadProjectID)

	switch eventType {
	case domain.EventProjectCreated:
		return fmt.Sprintf("New project created: %s", projectTitle), projectPayload
	case domain.EventProjectUpdated:
		return fmt.Sprintf("Project %q has been updated.", projectTitle), projectPayload
	case domain.EventMemberAdded:
		return fmt.Sprintf("You were added to project: %s", projectTitle), projectPayload
	case domain.EventMemberRemoved:
		return fmt.Sprintf("You were removed from project: %s", projectTitle), projectPayload
	case domain.EventTaskCreated:
		return fmt.Sprintf("A new task %q has been created in project %q.", taskTitle, projectTitle), taskPayload
	case domain.EventTaskAssigned:
		return fmt.Sprintf("Task %q has been assigned to you in project %q.", taskTitle, projectTitle), taskPayload
	case domain.EventTaskUpdated:
		return fmt.Sprintf("Task %q in project %q has been updated.", taskTitle, projectTitle), taskPayload
	case domain.EventTaskCompleted:
		return fmt.Sprintf("Task %q in project %q has been marked as completed.", taskTitle, projectTitle), taskPayload
	case domain.EventTaskDeleted:
		return fmt.Sprintf("Task %q in project %q has been deleted.", taskTitle, projectTitle), taskPayload
	default:
		return fmt.Sprintf("Activity in project %q.", projectTitle), projectPayload
	}
}

func formatTaskEvent(eventType domain.EventType, data domain.Payload) (string, domain.Payload) {
	taskTitle := data[domain.PayloadTaskTitle]
	taskPayload := pick(data, domain.PayloadTaskID, domain.PayloadTaskTitle)

	switch eventType {
	case domain.EventTaskCreated:
		return fmt.Sprintf("A new task %q has been created.", taskTitle), taskPayload
	case domain.EventTaskAssigned:
		return fmt.Sprintf("Task %q has been assigned to you.", taskTitle), taskPayload
	case domain.EventTaskUpdated:
		return fmt.Sprintf("Your task %q has been updated.", taskTitle), taskPayload
	case domain.EventTaskCompleted:
		return fmt.Sprintf("Your task %q has been marked as completed.", taskTitle), taskPayload
	case domain.EventTaskDeleted:
		return fmt.Sprintf("Your task %q has been deleted.", taskTitle), taskPayload
	default:
		return fmt.Sprintf("Update on your task %q.", taskTitle), taskPayload
	}
}

// pick copies only the named keys that are present and non-empty.
func pick(data domain.Payload, keys ...string) domain.Payload {
	out := make(domain.Payload, len(keys))
	for _, key := range keys {
		if value := data[key]; value != "" {
			out[key] = value
		}
	}
	return out
}
