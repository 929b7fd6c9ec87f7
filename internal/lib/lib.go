// Package lib holds infrastructure that does not belong to a single layer:
// blob storage for attachments and the asynq job service.
package lib
