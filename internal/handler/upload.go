package handler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"

	"github.com/leadervibe/internal/service"
	_ "golang.org/x/image/webp"
)

const (
	maxGalleryImages = 12
	maxProfilePhotos = 1
	maxProfileImages = 10
)

type uploadLimits struct {
	maxBytes int64
}

// uploadError is a client mistake in the multipart payload.
type uploadError struct {
	message string
}

func (e uploadError) Error() string { return e.message }

// readUploads 读取表单中的图片文件，校验数量、大小，并确认内容能被解码为图片
func (l uploadLimits) readUploads(form *multipart.Form, field string, maxCount int) ([]service.UploadFile, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	if len(headers) > maxCount {
		return nil, uploadError{fmt.Sprintf("Too many files for %s (max %d)", field, maxCount)}
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := l.readImage(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (l uploadLimits) readImage(header *multipart.FileHeader) (service.UploadFile, error) {
	if header.Size > l.maxBytes {
		return service.UploadFile{}, uploadError{fmt.Sprintf("%s exceeds the %d MB upload limit", header.Filename, l.maxBytes>>20)}
	}

	src, err := header.Open()
	if err != nil {
		return service.UploadFile{}, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, l.maxBytes+1))
	if err != nil {
		return service.UploadFile{}, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	if int64(len(data)) > l.maxBytes {
		return service.UploadFile{}, uploadError{fmt.Sprintf("%s exceeds the %d MB upload limit", header.Filename, l.maxBytes>>20)}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return service.UploadFile{}, uploadError{"Only image files are allowed"}
	}

	return service.UploadFile{
		Filename:    header.Filename,
		ContentType: "image/" + format,
		Data:        data,
	}, nil
}
