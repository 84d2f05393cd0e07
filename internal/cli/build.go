package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/marofny/deckhand/internal/core/deploy"
	"github.com/marofny/deckhand/internal/shell/client"
	"github.com/marofny/deckhand/internal/shell/docker"
)

// =============================================================================
// Build Pipeline
// =============================================================================

// buildPipeline builds app images on the local daemon and uploads them to
// the control plane, one task at a time: build, then stream the saved image
// straight into the multipart upload. Nothing is buffered whole.
type buildPipeline struct {
	docker     docker.Client
	api        *client.Client
	contextDir string
}

// Run executes every build task in order. The first failing task aborts the
// rest.
func (b *buildPipeline) Run(tasks []deploy.BuildTask) error {
	for _, task := range tasks {
		if err := b.runOne(task); err != nil {
			return fmt.Errorf("app %s: %w", task.ShortName, err)
		}
	}
	return nil
}

func (b *buildPipeline) runOne(task deploy.BuildTask) error {
	buildContext := filepath.Join(b.contextDir, task.Context)
	if info, err := os.Stat(buildContext); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathResolution, buildContext)
	}

	pterm.Info.Printfln("Building app: %s", task.ShortName)
	stream, err := b.docker.BuildImage(docker.BuildSpec{
		Dockerfile: task.Dockerfile,
		ContextDir: buildContext,
		Tag:        task.Tag,
		Platform:   task.Platform,
	})
	if err != nil {
		return err
	}
	if err := printBuildStream(stream, os.Stdout); err != nil {
		stream.Close()
		return err
	}
	stream.Close()
	pterm.Success.Printfln("Build done: %s", task.ShortName)

	pterm.Info.Printfln("Uploading image: %s", task.ShortName)
	image, err := b.docker.SaveImage(task.Tag)
	if err != nil {
		return err
	}
	defer image.Close()
	if err := b.api.UploadImage(image); err != nil {
		return err
	}
	pterm.Success.Printfln("Upload done: %s", task.ShortName)

	return nil
}

// =============================================================================
// Build Output
// =============================================================================

// buildMessage is one line of the daemon's JSON build stream.
type buildMessage struct {
	Stream string `json:"stream"`
	Error  string `json:"error"`
}

// printBuildStream relays the daemon's build output to the operator and
// surfaces build errors, which the daemon reports in-stream rather than via
// the HTTP status.
func printBuildStream(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg buildMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Error != "" {
			return fmt.Errorf("build failed: %s", msg.Error)
		}
		if msg.Stream != "" {
			fmt.Fprint(w, msg.Stream)
		}
	}
	return scanner.Err()
}
