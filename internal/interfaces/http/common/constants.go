package common

const (
	// MaxIPNRequestBody limits form-encoded IPN bodies.
	MaxIPNRequestBody = 64 << 10
	// DefaultMaxUploadBytes caps a proof submission including its file.
	DefaultMaxUploadBytes = 8 << 20
	// MultipartMemory is kept in memory before multipart parts spill to disk.
	MultipartMemory = 1 << 20
	// DefaultFailureListLimit applies when the admin list has no limit.
	DefaultFailureListLimit = 50
	// MaxFailureListLimit bounds the admin list page size.
	MaxFailureListLimit = 200
)
