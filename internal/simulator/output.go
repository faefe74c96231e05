package simulator

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chrisdamba/trafficsim/internal/cloudwriter"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	"github.com/chrisdamba/trafficsim/internal/simulator/producers"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// partitionFor returns the hive-style hour partition of a serialized event.
func partitionFor(msg []byte) (string, error) {
	var head struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return "", err
	}
	if head.Timestamp == nil {
		return "", fmt.Errorf("invalid timestamp")
	}
	eventTime := time.Unix(*head.Timestamp, 0).UTC()
	year, month, day := eventTime.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, eventTime.Hour()), nil
}

type JSONOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	partition, err := partitionFor(msg)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	fileKey := topic + "/" + partition
	file, ok := j.files[fileKey]
	if !ok {
		fullPath := filepath.Join(j.basePath, j.folder, topic, filepath.FromSlash(partition))
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var lastErr error
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
		delete(j.files, key)
	}
	return lastErr
}

type csvFile struct {
	file    *os.File
	writer  *csv.Writer
	headers []string
}

type CSVOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*csvFile
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*csvFile),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	partition, err := partitionFor(msg)
	if err != nil {
		return err
	}
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fileKey := topic + "/" + partition
	cf, ok := c.files[fileKey]
	if !ok {
		fullPath := filepath.Join(c.basePath, c.folder, topic, filepath.FromSlash(partition))
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		cf = &csvFile{file: file, writer: csv.NewWriter(file), headers: csvHeaders(event)}
		c.files[fileKey] = cf
		if err := cf.writer.Write(cf.headers); err != nil {
			return err
		}
	}

	row := make([]string, len(cf.headers))
	for i, header := range cf.headers {
		row[i] = csvValue(event[header])
	}
	if err := cf.writer.Write(row); err != nil {
		return err
	}
	cf.writer.Flush()
	return cf.writer.Error()
}

func csvHeaders(event map[string]interface{}) []string {
	headers := make([]string, 0, len(event))
	for key := range event {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

func csvValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		// json numbers decode as float64; keep integers integral
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = csvValue(item)
		}
		return strings.Join(parts, ";")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var lastErr error
	for key, cf := range c.files {
		cf.writer.Flush()
		if err := cf.writer.Error(); err != nil {
			lastErr = err
		}
		if err := cf.file.Close(); err != nil {
			lastErr = err
		}
		delete(c.files, key)
	}
	return lastErr
}

// CloudParquetFile adapts a CloudWriter to the parquet writer's file API.
// Only sequential writes are supported.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error)   { return c, nil }
func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) { return c, nil }

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

type parquetFile struct {
	writer *writer.ParquetWriter
	file   source.ParquetFile
}

type ParquetOutput struct {
	ctx                context.Context
	basePath           string
	folder             string
	mu                 sync.Mutex
	files              map[string]*parquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	logger             *zap.Logger
}

func NewParquetOutput(ctx context.Context, config *models.Config, logger *zap.Logger) (*ParquetOutput, error) {
	p := &ParquetOutput{
		ctx:      ctx,
		basePath: config.OutputPath,
		folder:   config.OutputFolder,
		files:    make(map[string]*parquetFile),
		logger:   logger,
	}

	if config.OutputDestination == models.OutputDestinationS3 {
		factory, err := cloudwriter.NewS3WriterFactory(ctx, config.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		p.cloudWriterFactory = factory
		p.cloudBucketName = config.CloudStorage.BucketName
		return p, nil
	}

	p.cleanup()
	return p, nil
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	partition, err := partitionFor(msg)
	if err != nil {
		return err
	}
	rec, err := NewRecord(topic)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(msg, rec); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := topic + "/" + partition
	pf, ok := p.files[key]
	if !ok {
		pf, err = p.createNewWriter(topic, partition)
		if err != nil {
			return fmt.Errorf("failed to create new writer: %w", err)
		}
		p.files[key] = pf
	}

	if err := pf.writer.Write(reflect.ValueOf(rec).Elem().Interface()); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createNewWriter(topic, partition string) (*parquetFile, error) {
	var fw source.ParquetFile
	if p.cloudWriterFactory != nil {
		objectPath := path.Join(p.folder, topic, partition, "data.parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.ctx, p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cw)
	} else {
		fullPath := filepath.Join(p.basePath, p.folder, topic, filepath.FromSlash(partition))
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		var err error
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	sc, err := GetSchema(topic)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, sc, 4)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	return &parquetFile{writer: pw, file: fw}, nil
}

// cleanup removes parquet files left by a previous local run.
func (p *ParquetOutput) cleanup() {
	fullPath := filepath.Join(p.basePath, p.folder)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return
	}
	err := filepath.Walk(fullPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".parquet" {
			return os.Remove(path)
		}
		return nil
	})
	if err != nil {
		p.logger.Warn("error cleaning up parquet files", zap.Error(err))
	}
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, pf := range p.files {
		if err := pf.writer.WriteStop(); err != nil {
			lastErr = err
			p.logger.Error("error closing parquet writer", zap.String("key", key), zap.Error(err))
		}
		if err := pf.file.Close(); err != nil {
			lastErr = err
			p.logger.Error("error closing parquet file", zap.String("key", key), zap.Error(err))
		}
		delete(p.files, key)
	}
	return lastErr
}

func (s *Simulator) determineOutputDestination(ctx context.Context) (OutputDestination, error) {
	if s.Config.KafkaEnabled {
		return producers.NewSaramaProducer(s.Config, s.logger)
	}

	switch s.Config.OutputFormat {
	case models.OutputFormatParquet:
		return NewParquetOutput(ctx, s.Config, s.logger)
	case models.OutputFormatJSON:
		return NewJSONOutput(s.Config.OutputPath, s.Config.OutputFolder), nil
	case models.OutputFormatCSV:
		return NewCSVOutput(s.Config.OutputPath, s.Config.OutputFolder), nil
	case models.OutputFormatPostgres:
		return output.NewPostgresOutput(ctx, &s.Config.Database)
	case models.OutputFormatConsole, "":
		return NewConsoleOutput(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", s.Config.OutputFormat)
	}
}
