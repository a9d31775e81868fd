package provider

// Importing a provider package runs its init(), which registers it with the registry.
// A new provider lives under pkg/storage/<name> and is added here.

import (
	_ "filedock/pkg/storage/aws"
	_ "filedock/pkg/storage/gcp"
	_ "filedock/pkg/storage/minio"
)
