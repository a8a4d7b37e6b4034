package notification

import (
	"fmt"

	"github.com/taskpulse/taskpulse/internal/domain"
)

// notAvailable substitutes for optional task fields that are absent.
const notAvailable = "N/A"

// signature closes every notification body.
const signature = "Best regards,\nTask Management System"

// buildAssignmentMessage renders the subject and body for a task-assigned
// notification addressed to the assignee.
func buildAssignmentMessage(task *domain.Task, assignee *domain.User) (subject, body string) {
	subject = fmt.Sprintf("New Task Assigned: %s", task.Title)
	body = fmt.Sprintf(
		"Hello %s,\n\n"+
			"You have been assigned a new task:\n\n"+
			"Title: %s\n"+
			"Description: %s\n"+
			"Priority: %s\n"+
			"Due Date: %s\n\n"+
			"Please review and start working on it.\n\n"+
			signature,
		assignee.DisplayName(),
		task.Title,
		orNA(task.Description),
		task.Priority,
		dueDateOrNA(task),
	)
	return subject, body
}

// buildStatusChangeMessage renders the subject and body for a status-change
// notification.
func buildStatusChangeMessage(task *domain.Task, assignee *domain.User) (subject, body string) {
	subject = fmt.Sprintf("Task Status Updated: %s", task.Title)
	body = fmt.Sprintf(
		"Hello %s,\n\n"+
			"The status of your task has been updated:\n\n"+
			"Title: %s\n"+
			"New Status: %s\n"+
			"Priority: %s\n\n"+
			signature,
		assignee.DisplayName(),
		task.Title,
		task.Status,
		task.Priority,
	)
	return subject, body
}

// buildReminderMessage renders the subject and body for a due-date reminder.
func buildReminderMessage(task *domain.Task, assignee *domain.User) (subject, body string) {
	subject = fmt.Sprintf("Task Reminder: %s", task.Title)
	body = fmt.Sprintf(
		"Hello %s,\n\n"+
			"This is a reminder about your upcoming task:\n\n"+
			"Title: %s\n"+
			"Description: %s\n"+
			"Priority: %s\n"+
			"Due Date: %s\n\n"+
			"Please ensure you complete it on time.\n\n"+
			signature,
		assignee.DisplayName(),
		task.Title,
		orNA(task.Description),
		task.Priority,
		dueDateOrNA(task),
	)
	return subject, body
}

// orNA returns the value, or "N/A" when it is empty.
func orNA(value string) string {
	if value == "" {
		return notAvailable
	}
	return value
}

// dueDateOrNA formats the task's due date, or "N/A" when none is set.
func dueDateOrNA(task *domain.Task) string {
	if task.DueDate == nil {
		return notAvailable
	}
	return task.DueDate.Format("2006-01-02 15:04")
}
