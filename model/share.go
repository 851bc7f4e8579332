package model

import "time"

type DeviceType string

const (
	DeviceLaptop  DeviceType = "laptop"
	DeviceDesktop DeviceType = "desktop"
	DevicePhone   DeviceType = "phone"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

type Device struct {
	Name string     `json:"name"`
	Type DeviceType `json:"type"`
}

// SharedFile is one document of the Quick-Share collection.
type SharedFile struct {
	ID               string     `firestore:"-" json:"id"`
	Name             string     `firestore:"name" json:"name"`
	MimeType         string     `firestore:"mimeType" json:"mimeType"`
	Size             int64      `firestore:"size" json:"size"`
	DownloadURL      string     `firestore:"downloadUrl" json:"downloadUrl"`
	StoragePath      string     `firestore:"storagePath" json:"storagePath"`
	ThumbnailURL     *string    `firestore:"thumbnailUrl" json:"thumbnailUrl"`
	SenderDeviceName string     `firestore:"senderDeviceName" json:"senderDeviceName"`
	SenderDeviceType DeviceType `firestore:"senderDeviceType" json:"senderDeviceType"`
	CreatedAt        time.Time  `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

type UploadState string

const (
	UploadQueued       UploadState = "queued"
	UploadTransferring UploadState = "transferring"
	UploadCompleted    UploadState = "completed"
	UploadFailed       UploadState = "failed"
)

type UploadProgress struct {
	FileID   string      `json:"fileId"`
	FileName string      `json:"fileName"`
	Progress float64     `json:"progress"`
	State    UploadState `json:"state"`
	Error    string      `json:"error,omitempty"`
}
