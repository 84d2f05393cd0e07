package docker

import (
	"context"
	"io"
	"sort"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/archive"
)

// =============================================================================
// Image Operations
// =============================================================================

// ListImageTags returns every repo:tag known to the daemon, sorted. Untagged
// (dangling) images are skipped.
func (d *DockerClient) ListImageTags() ([]string, error) {
	images, err := d.cli.ImageList(context.Background(), image.ListOptions{})
	if err != nil {
		return nil, NewDockerError("ListImageTags", "image", "", err.Error(), err)
	}
	var tags []string
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == "<none>:<none>" {
				continue
			}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// BuildImage builds an image from a local context directory and returns the
// daemon's raw JSON progress stream. The caller owns the reader and must
// close it; the build is not complete until the stream is drained.
func (d *DockerClient) BuildImage(spec BuildSpec) (io.ReadCloser, error) {
	buildContext, err := archive.TarWithOptions(spec.ContextDir, &archive.TarOptions{})
	if err != nil {
		return nil, NewDockerError("BuildImage", "image", spec.Tag, err.Error(), ErrImageBuildFailed)
	}

	resp, err := d.cli.ImageBuild(context.Background(), buildContext, types.ImageBuildOptions{
		Tags:       []string{spec.Tag},
		Dockerfile: spec.Dockerfile,
		Platform:   spec.Platform,
		Remove:     true,
	})
	if err != nil {
		buildContext.Close()
		return nil, NewDockerError("BuildImage", "image", spec.Tag, err.Error(), ErrImageBuildFailed)
	}
	return resp.Body, nil
}

// SaveImage streams an image as a tarball. The reader is lazy: bytes are
// produced as the caller consumes them, so a multi-hundred-megabyte image
// never sits in memory whole.
func (d *DockerClient) SaveImage(tag string) (io.ReadCloser, error) {
	reader, err := d.cli.ImageSave(context.Background(), []string{tag})
	if err != nil {
		return nil, NewDockerError("SaveImage", "image", tag, err.Error(), ErrImageNotFound)
	}
	return reader, nil
}

// LoadImage loads an image tarball stream into the daemon.
func (d *DockerClient) LoadImage(input io.Reader) error {
	resp, err := d.cli.ImageLoad(context.Background(), input)
	if err != nil {
		return NewDockerError("LoadImage", "image", "", err.Error(), ErrImageLoadFailed)
	}
	defer resp.Body.Close()

	// Drain the response so the daemon finishes the load before we return.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return NewDockerError("LoadImage", "image", "", err.Error(), ErrImageLoadFailed)
	}
	return nil
}
