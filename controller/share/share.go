package share

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"larre/dto"
	"larre/logger"
	"larre/model"
	"larre/services"
)

type Options struct {
	Detector services.DeviceDetector
	// Background outlives requests; queued batches run under it.
	Background context.Context
	MaxBytes   int64
	SpoolDir   string
	Logger     *logger.Logger
	// Upload guards POST /share, e.g. the rate limiter.
	Upload []gin.HandlerFunc
}

func ShareController(router gin.IRouter, qs *services.QuickShare, opts Options) {
	if opts.Detector == nil {
		opts.Detector = services.UserAgentDetector{}
	}
	if opts.Background == nil {
		opts.Background = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	routes := router.Group("/share")
	{
		routes.GET("", func(c *gin.Context) {
			GetShareState(c, qs, opts.Detector)
		})
		upload := append(append([]gin.HandlerFunc{}, opts.Upload...), func(c *gin.Context) {
			UploadShared(c, qs, opts)
		})
		routes.POST("", upload...)
		routes.GET("/uploads", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"uploads": qs.Tracker().Snapshot()})
		})
		routes.GET("/device", func(c *gin.Context) {
			c.JSON(http.StatusOK, DetectDevice(c, opts.Detector))
		})
		routes.GET("/events", func(c *gin.Context) {
			StreamEvents(c, qs)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteShared(c, qs)
		})
	}
}

// DisabledController answers every Quick-Share route when no Firebase project
// is configured.
func DisabledController(router gin.IRouter) {
	unavailable := func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Quick Share is not configured"})
	}
	routes := router.Group("/share")
	{
		routes.GET("", unavailable)
		routes.POST("", unavailable)
		routes.GET("/uploads", unavailable)
		routes.GET("/device", unavailable)
		routes.GET("/events", unavailable)
		routes.DELETE("/:id", unavailable)
	}
}

func DetectDevice(c *gin.Context, detector services.DeviceDetector) model.Device {
	return detector.Detect(services.DeviceHints{
		UserAgent: c.Request.UserAgent(),
		Platform:  c.GetHeader("Sec-CH-UA-Platform"),
	})
}

func GetShareState(c *gin.Context, qs *services.QuickShare, detector services.DeviceDetector) {
	feed := qs.Feed()
	c.JSON(http.StatusOK, dto.ShareStateResponse{
		Files:   dto.NewSharedFileResponses(feed.Files(), time.Now()),
		Loading: feed.Loading(),
		Uploads: qs.Tracker().Snapshot(),
		Device:  DetectDevice(c, detector),
	})
}

// UploadShared accepts the multipart "files" parts. By default the batch is
// queued and runs after the response; with ?wait=true the response carries
// the per-file results.
func UploadShared(c *gin.Context, qs *services.QuickShare, opts Options) {
	if opts.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, opts.MaxBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}
	device := DetectDevice(c, opts.Detector)

	if c.Query("wait") == "true" {
		results := qs.Upload(c.Request.Context(), dto.UploadFiles(headers), device)
		c.JSON(http.StatusOK, dto.UploadResultsResponse{Results: results})
		return
	}

	files, cleanup, err := spool(headers, opts.SpoolDir)
	if err != nil {
		opts.Logger.WithError(err).Errorw("Failed to spool upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	batch := qs.Prepare(files)
	qs.RunAsync(opts.Background, batch, device, cleanup)

	c.JSON(http.StatusAccepted, dto.UploadAcceptedResponse{
		Message: "Upload queued",
		FileIDs: batch.IDs(),
	})
}

func DeleteShared(c *gin.Context, qs *services.QuickShare) {
	if err := qs.RemoveByID(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File removed"})
}

// StreamEvents pushes "snapshot" events on every feed change and "upload"
// events on every tracker change until the client goes away.
func StreamEvents(c *gin.Context, qs *services.QuickShare) {
	snapshots, stopFeed := qs.Feed().Watch()
	defer stopFeed()

	uploads := make(chan model.UploadProgress, 32)
	stopUploads := qs.Tracker().Observe(func(p model.UploadProgress) {
		select {
		case uploads <- p:
		default:
		}
	})
	defer stopUploads()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case files, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", dto.NewSharedFileResponses(files, time.Now()))
			return true
		case p := <-uploads:
			c.SSEvent("upload", p)
			return true
		}
	})
}

// spool copies the parts to temp files so a queued batch can still read them
// after the request's own multipart files are removed.
func spool(headers []*multipart.FileHeader, dir string) ([]services.UploadFile, func(), error) {
	var paths []string
	cleanup := func() {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		path, err := spoolOne(fh, dir)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		paths = append(paths, path)
		files = append(files, services.UploadFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
	}
	return files, cleanup, nil
}

func spoolOne(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "larre-share-*")
	if err != nil {
		return "", err
	}
	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
