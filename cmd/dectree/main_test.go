package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ar90n/dectree/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeDataset(t *testing.T, dir, name string, images []dataset.Image, labels []uint8) string {
	t.Helper()

	data, err := dataset.New(images, labels)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, dataset.Write(&buf, data))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func twoImages(t *testing.T, dir, name string) string {
	t.Helper()

	return writeDataset(t, dir, name,
		[]dataset.Image{dataset.Filled(dataset.Black), dataset.Filled(dataset.White)},
		[]uint8{0, 1},
	)
}

func run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"dectree"}, args...))
	return stdout.String(), err
}

func Test_Evaluate(t *testing.T) {
	dir := t.TempDir()
	trainPath := twoImages(t, dir, "training.bin")
	testPath := twoImages(t, dir, "testing.bin")

	out, err := run(trainPath, testPath)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run("--max-goroutines", "1", "--strict", trainPath, testPath)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	// a file named after a subcommand is reached through its path
	named := twoImages(t, dir, "train")
	out, err = run(named, testPath)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func Test_EvaluateCountsOnlyCorrect(t *testing.T) {
	dir := t.TempDir()
	trainPath := twoImages(t, dir, "training.bin")
	testPath := writeDataset(t, dir, "testing.bin",
		[]dataset.Image{dataset.Filled(dataset.Black), dataset.Filled(dataset.White), dataset.Filled(dataset.White), dataset.Filled(99)},
		[]uint8{0, 1, 5, 0},
	)

	out, err := run(trainPath, testPath)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func Test_EvaluateFailures(t *testing.T) {
	dir := t.TempDir()
	valid := twoImages(t, dir, "valid.bin")

	emptyFile := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(emptyFile, []byte{}, 0o644))

	corrupt := filepath.Join(dir, "corrupt.bin")
	require.NoError(t, os.WriteFile(corrupt, []byte{5, 0, 0, 0, 1, 2, 3}, 0o644))

	noImages := filepath.Join(dir, "no_images.bin")
	require.NoError(t, os.WriteFile(noImages, []byte{0, 0, 0, 0}, 0o644))

	for _, tc := range []struct {
		Name string
		Args []string
	}{
		{Name: "no arguments", Args: []string{}},
		{Name: "one argument", Args: []string{valid}},
		{Name: "three arguments", Args: []string{valid, valid, valid}},
		{Name: "empty training file", Args: []string{emptyFile, valid}},
		{Name: "corrupt training file", Args: []string{corrupt, valid}},
		{Name: "training file without images", Args: []string{noImages, valid}},
		{Name: "missing testing file", Args: []string{valid, filepath.Join(dir, "missing.bin")}},
		{Name: "invalid terminate ratio", Args: []string{"--terminate-ratio", "2", valid, valid}},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			out, err := run(tc.Args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func Test_TrainPredictInspectRender(t *testing.T) {
	dir := t.TempDir()
	trainPath := twoImages(t, dir, "training.bin")
	testPath := twoImages(t, dir, "testing.bin")
	model := filepath.Join(dir, "model.bin")

	out, err := run("train", "--output", model, trainPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = run("predict", "--model", model, testPath)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run("inspect", "--model", model)
	require.NoError(t, err)
	var stats struct {
		Trained int `yaml:"trained"`
		Tree    struct {
			Nodes  int `yaml:"nodes"`
			Leaves int `yaml:"leaves"`
			Depth  int `yaml:"depth"`
		} `yaml:"tree"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.Trained)
	assert.Equal(t, 3, stats.Tree.Nodes)
	assert.Equal(t, 2, stats.Tree.Leaves)
	assert.Equal(t, 1, stats.Tree.Depth)

	out, err = run("render", "--model", model, "--format", "dot")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "pixel 0 (0,0)"), out)

	_, err = run("render", "--model", model, "--format", "bmp")
	assert.Error(t, err)

	_, err = run("predict", "--model", filepath.Join(dir, "missing.bin"), testPath)
	assert.Error(t, err)

	_, err = run("predict", "--model", trainPath, testPath)
	assert.Error(t, err)
}
