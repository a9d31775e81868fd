package common

type Provider string

const (
	GCP   Provider = "GCP"
	AWS   Provider = "AWS"
	MinIO Provider = "MinIO"
)
