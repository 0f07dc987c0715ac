package appcore

import (
	"io"

	"pairdp/internal/engine"
	"pairdp/internal/writers"
)

// ResultWriterFactory starts the registered writer for Options.Format.
type ResultWriterFactory struct {
	Options writers.Options
}

func NewResultWriterFactory(o writers.Options) ResultWriterFactory {
	return ResultWriterFactory{Options: o}
}

func (w ResultWriterFactory) Start(out io.Writer, bufSize int) (chan<- engine.Result, <-chan error) {
	return writers.StartResultWriter(out, w.Options, bufSize)
}
