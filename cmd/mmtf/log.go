package main

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logWhere decides where to send logged output. "" throws it away,
// "stdout" is standard output and anything else is a file we append
// to. The returned function closes the file, if there is one.
func logWhere(outinfo string, stdout io.Writer) (*zap.Logger, func() error, error) {
	nothing := func() error { return nil }
	var w zapcore.WriteSyncer
	closer := nothing
	switch outinfo {
	case "":
		return zap.NewNop(), nothing, nil
	case "stdout":
		w = zapcore.AddSync(stdout)
	default:
		fp, err := os.OpenFile(outinfo, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nothing, err
		}
		w, closer = fp, fp.Close
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	log := zap.New(zapcore.NewCore(enc, w, zapcore.InfoLevel), zap.AddCaller())
	done := func() error {
		_ = log.Sync()
		return closer()
	}
	return log, done, nil
}
