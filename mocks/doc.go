// Package mocks contains gomock doubles for the pipeline's backend interfaces.
//
//go:generate mockgen -destination=translator.go -package=mocks github.com/mrsingh-rishi/vidscribe/workers Translator
//go:generate mockgen -destination=pipeline.go -package=mocks github.com/mrsingh-rishi/vidscribe/pipeline Extractor,Transcriber
package mocks
