// Package lib holds integrations that do not belong to a single layer:
// email delivery (Resend), background jobs (Asynq over Redis), object
// storage (MinIO) and small generic helpers.
package lib
