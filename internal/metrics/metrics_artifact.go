package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ArtifactUploadCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfbp_artifact_upload_count",
			Help: "Total number of artifacts uploaded",
		},
		[]string{"project"},
	)

	ArtifactUploadFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfbp_artifact_upload_failed",
			Help: "Number of artifact uploads that failed",
		},
		[]string{"project"},
	)

	ArtifactUploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfbp_artifact_upload_bytes",
			Help: "Total artifact bytes uploaded",
		},
		[]string{"project"},
	)
)
