package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxUploadFiles = 10

var uploadExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".csv":  true,
}

var (
	errNoFiles        = errors.New("at least one file is required in files[]")
	errTooManyFiles   = fmt.Errorf("at most %d files may be uploaded", maxUploadFiles)
	errUnsupportedExt = errors.New("only .xlsx and .csv files are accepted")
)

// readUploadedFiles loads every files[] part into memory so the classifier and the table
// reader can each read it from the start.
func readUploadedFiles(c *gin.Context, maxBytes int64) ([]models.RawFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	headers := form.File["files[]"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		return nil, errNoFiles
	}
	if len(headers) > maxUploadFiles {
		return nil, errTooManyFiles
	}

	files := make([]models.RawFile, 0, len(headers))
	for _, h := range headers {
		file, err := readUploadedFile(h, maxBytes)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readUploadedFile(h *multipart.FileHeader, maxBytes int64) (models.RawFile, error) {
	name := filepath.Base(h.Filename)
	if !uploadExtensions[strings.ToLower(filepath.Ext(name))] {
		return models.RawFile{}, fmt.Errorf("%s: %w", name, errUnsupportedExt)
	}
	if maxBytes > 0 && h.Size > maxBytes {
		return models.RawFile{}, fmt.Errorf("%s exceeds the %dMB upload limit", name, maxBytes>>20)
	}

	f, err := h.Open()
	if err != nil {
		return models.RawFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.RawFile{}, err
	}
	return models.RawFile{Name: name, Data: data}, nil
}

func logUploadError(logger *logrus.Logger, err error, requestID string) {
	logger.WithFields(logrus.Fields{
		"error":      err.Error(),
		"request_id": requestID,
	}).Error("[upload.error]")
}
