package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"
)

// CSVHeader 每个输出文件的第一行
var CSVHeader = []string{"cores", "time"}

// IOError 输出文件创建、写入或刷盘失败
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s 失败: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

type outputStream struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

// OutputStreams 每个实验类型一个 CSV 文件，只由扫描线程访问
type OutputStreams struct {
	streams map[ExperimentKind]*outputStream
}

// OpenOutputStreams 在 dir 下创建（截断）全部 CSV 文件并写入表头
func OpenOutputStreams(dir string) (*OutputStreams, error) {
	s := &OutputStreams{streams: make(map[ExperimentKind]*outputStream, len(AllKinds))}
	for _, kind := range AllKinds {
		path := filepath.Join(dir, kind.FileName())
		f, err := os.Create(path)
		if err != nil {
			_ = s.Close()
			return nil, &IOError{Op: "创建", Path: path, Err: err}
		}
		st := &outputStream{path: path, file: f, writer: csv.NewWriter(f)}
		s.streams[kind] = st
		if err := st.write(CSVHeader); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (st *outputStream) write(record []string) error {
	if err := st.writer.Write(record); err != nil {
		return &IOError{Op: "写入", Path: st.path, Err: err}
	}
	st.writer.Flush()
	if err := st.writer.Error(); err != nil {
		return &IOError{Op: "写入", Path: st.path, Err: err}
	}
	if err := st.file.Sync(); err != nil {
		return &IOError{Op: "刷盘", Path: st.path, Err: err}
	}
	return nil
}

// Record 追加一行 (cores, seconds) 并立即刷到磁盘，进程被杀时最多丢失正在进行的那一行
func (s *OutputStreams) Record(kind ExperimentKind, result RunResult) error {
	st, ok := s.streams[kind]
	if !ok || st.file == nil {
		return &IOError{Op: "写入", Path: string(kind), Err: fmt.Errorf("输出流未打开")}
	}
	row := []string{
		strconv.Itoa(result.Cores),
		strconv.FormatFloat(result.Seconds(), 'f', -1, 64),
	}
	if err := st.write(row); err != nil {
		return err
	}
	st.rows++
	return nil
}

// Rows 已写入的数据行数（不含表头）
func (s *OutputStreams) Rows(kind ExperimentKind) int {
	if st, ok := s.streams[kind]; ok {
		return st.rows
	}
	return 0
}

func (s *OutputStreams) Path(kind ExperimentKind) string {
	if st, ok := s.streams[kind]; ok {
		return st.path
	}
	return ""
}

// Close 关闭全部文件，可重复调用
func (s *OutputStreams) Close() error {
	var err error
	for _, st := range s.streams {
		if st.file == nil {
			continue
		}
		st.writer.Flush()
		err = multierr.Append(err, st.writer.Error())
		if cerr := st.file.Close(); cerr != nil {
			err = multierr.Append(err, &IOError{Op: "关闭", Path: st.path, Err: cerr})
		}
		st.file = nil
	}
	return err
}
