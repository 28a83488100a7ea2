package tool

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxImageSize = 5 * 1024 * 1024 // 5MB

// imageMIMETypes maps supported image extensions to their MIME type.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ReadImageTool reads an image from the workspace and returns it as a
// base64 data URL, so vision-capable models can consume it.
type ReadImageTool struct {
	Workspace string
}

type readImageParams struct {
	FilePath string `json:"file_path"`
}

func (t *ReadImageTool) Name() string { return "read_image" }
func (t *ReadImageTool) Description() string {
	return "Read an image file from the workspace as a base64 data URL"
}

func (t *ReadImageTool) Schema() json.RawMessage {
	return json.RawMessage(`{
	"type": "object",
	"properties": {
		"file_path": {
			"type": "string",
			"description": "Path to the image, relative to the workspace root"
		}
	},
	"required": ["file_path"]
}`)
}

func (t *ReadImageTool) Execute(_ context.Context, params json.RawMessage) (string, error) {
	var p readImageParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Sprintf("Error: invalid parameters: %v", err), nil
	}
	if p.FilePath == "" {
		return "Error: file_path is required", nil
	}

	mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(p.FilePath))]
	if !ok {
		return fmt.Sprintf("Error: unsupported image type: %s", filepath.Ext(p.FilePath)), nil
	}

	path, err := resolveInWorkspace(t.Workspace, p.FilePath)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: file not found: %s", p.FilePath), nil
		}
		return fmt.Sprintf("Error: %v", err), nil
	}
	if info.Size() > maxImageSize {
		return fmt.Sprintf("Error: image exceeds 5MB: %s", p.FilePath), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
