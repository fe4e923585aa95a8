package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"jackvm/util"
	"jackvm/vmcheck"
)

type Options struct {
	// OutputDir receives the .vm files. Empty means next to each source file.
	OutputDir string
	// DumpTokens also writes the token stream of each unit to <stem>T.xml.
	DumpTokens bool
	// Verify runs the stack checker over each unit's vm code before reporting success.
	Verify bool
}

// UnitResult is the outcome of compiling one source file.
type UnitResult struct {
	Source string
	Output string
	Class  string
	Err    error
}

// Compile compiles path, a .jack file or a directory of them. Every unit is compiled on its own
// with a fresh symbol table; a failing unit does not stop the others. The returned error
// aggregates the errors of all failed units.
func Compile(path string, opts Options) ([]UnitResult, error) {
	sources, err := collectSources(path)
	if err != nil {
		return nil, err
	}
	if opts.OutputDir != "" {
		if err = os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, err
		}
	}
	var result *multierror.Error
	results := make([]UnitResult, 0, len(sources))
	for _, source := range sources {
		res := compileFile(source, opts)
		fields := logrus.Fields{"unit": source, "output": res.Output}
		if res.Err != nil {
			logrus.WithFields(fields).Errorf("compiler: failed: %v", res.Err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", source, res.Err))
		} else {
			logrus.WithFields(fields).Info("compiler: compiled")
		}
		results = append(results, res)
	}
	return results, result.ErrorOrNil()
}

// CompileUnit compiles the jack source read from src into vm code written to dst and returns
// the compiled class name. unit names the source in error messages.
func CompileUnit(unit string, src io.Reader, dst io.Writer) (string, error) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(src)
	if err != nil {
		return "", err
	}
	return compileTokens(unit, tokens, dst)
}

func compileTokens(unit string, tokens []*Token, dst io.Writer) (string, error) {
	writer := NewVMWriter(dst)
	parser := NewParser(unit, tokens, writer)
	className, err := parser.CompileClass()
	if err != nil {
		return "", err
	}
	if err = writer.Flush(); err != nil {
		return "", err
	}
	return className, nil
}

func collectSources(path string) ([]string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		if !util.IsJackFile(path) {
			return nil, fmt.Errorf("compiler: %s is not a %s file", path, util.JackExt)
		}
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var sources []string
	for _, entry := range entries {
		// Sub directories are not compiled.
		if entry.IsDir() || !util.IsJackFile(entry.Name()) {
			continue
		}
		sources = append(sources, filepath.Join(path, entry.Name()))
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("compiler: no %s files in %s", util.JackExt, path)
	}
	return sources, nil
}

func compileFile(source string, opts Options) (res UnitResult) {
	unit := util.Stem(source)
	res = UnitResult{Source: source, Output: outputPath(source, opts.OutputDir, unit+util.VMExt)}

	logrus.Debugf("compiler: start tokenizing %s", source)
	tokens, err := tokenizeFile(source)
	if err != nil {
		res.Err = err
		return
	}
	var tokenFile string
	if opts.DumpTokens {
		tokenFile = outputPath(source, opts.OutputDir, unit+"T.xml")
		logrus.Debugf("compiler: write tokens to %s", tokenFile)
		if err = writeTokenFile(tokenFile, tokens); err != nil {
			removeFile(tokenFile)
			res.Err = err
			return
		}
	}

	logrus.Debugf("compiler: start compiling %s", source)
	out, err := os.Create(res.Output)
	if err != nil {
		removeFile(tokenFile)
		res.Err = &SinkError{Err: err}
		return
	}
	var sink io.Writer = out
	var emitted bytes.Buffer
	if opts.Verify {
		sink = io.MultiWriter(out, &emitted)
	}
	res.Class, err = compileTokens(unit, tokens, sink)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = &SinkError{Err: closeErr}
	}
	if err == nil && opts.Verify {
		logrus.Debugf("compiler: start verifying %s", res.Output)
		err = verify(&emitted)
	}
	if err != nil {
		// A failed unit leaves neither a partial .vm file nor its token dump behind.
		removeFile(res.Output)
		removeFile(tokenFile)
		res.Err = err
		return
	}
	if res.Class != unit {
		logrus.Warnf("compiler: class %s is declared in file %s", res.Class, source)
	}
	return
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("compiler: cannot remove %s: %v", path, err)
	}
}

func tokenizeFile(source string) ([]*Token, error) {
	in, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	tokenizer := &Tokenizer{}
	return tokenizer.Tokenize(in)
}

func writeTokenFile(path string, tokens []*Token) error {
	out, err := os.Create(path)
	if err != nil {
		return &SinkError{Err: err}
	}
	if err = WriteTokensXML(out, tokens); err != nil {
		out.Close()
		return &SinkError{Err: err}
	}
	if err = out.Close(); err != nil {
		return &SinkError{Err: err}
	}
	return nil
}

func verify(r io.Reader) error {
	instructions, err := vmcheck.Parse(r)
	if err != nil {
		return err
	}
	return vmcheck.Check(instructions)
}

func outputPath(source, outputDir, name string) string {
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	return filepath.Join(outputDir, name)
}
