package app

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// ConvertDateTime converts datetime input text (read in the service location)
// to UTC, FILETIME and Unix seconds.
//
// Empty text returns timeconv.ErrEmptyInput and a zero view. Text that is not
// a date returns timeconv.ErrInvalidDate together with a view whose fields
// all read timeconv.InvalidDate, so the failure stays visible.
func (s *Service) ConvertDateTime(ctx context.Context, text string) (DateTimeView, error) {
	ctx, span := tracer.Start(ctx, "converter.convert_datetime")
	defer span.End()

	if err := checkLength(text); err != nil {
		return DateTimeView{}, s.reject(ctx, span, kindDateTime, err)
	}

	in, err := timeconv.ParseLocalDateTime(text, s.loc)
	switch {
	case errors.Is(err, timeconv.ErrInvalidDate):
		s.invalid(ctx, span, kindDateTime, err)
		return invalidDateTimeView(), err
	case err != nil:
		return DateTimeView{}, s.reject(ctx, span, kindDateTime, err)
	}

	span.SetAttributes(attribute.Int64("instant_ms", in.Millis()))
	view := s.dateTimeView(ctx, in)
	return view, s.finish(ctx, span, kindDateTime, view.Valid)
}

// ConvertFileTime converts FILETIME input text to UTC and Unix seconds.
// Empty or non-numeric text returns an error and a zero view. Numbers that
// land outside the instant range produce Invalid Date fields and
// timeconv.ErrInvalidDate.
func (s *Service) ConvertFileTime(ctx context.Context, text string) (FileTimeView, error) {
	ctx, span := tracer.Start(ctx, "converter.convert_filetime")
	defer span.End()

	if err := checkLength(text); err != nil {
		return FileTimeView{}, s.reject(ctx, span, kindFileTime, err)
	}

	ft, err := timeconv.ParseFileTime(text)
	switch {
	case errors.Is(err, timeconv.ErrInvalidDate):
		s.invalid(ctx, span, kindFileTime, err)
		return FileTimeView{UTC: timeconv.InvalidDate, UnixTime: timeconv.InvalidDate}, err
	case err != nil:
		return FileTimeView{}, s.reject(ctx, span, kindFileTime, err)
	}

	in := timeconv.FileTimeToInstant(ft)
	span.SetAttributes(attribute.Int64("instant_ms", in.Millis()))
	view := s.fileTimeView(ctx, in)
	return view, s.finish(ctx, span, kindFileTime, view.Valid)
}

// ConvertUnix converts Unix seconds input text to UTC and FILETIME. Seconds
// outside the instant range produce Invalid Date fields and
// timeconv.ErrInvalidDate.
func (s *Service) ConvertUnix(ctx context.Context, text string) (UnixView, error) {
	ctx, span := tracer.Start(ctx, "converter.convert_unix")
	defer span.End()

	if err := checkLength(text); err != nil {
		return UnixView{}, s.reject(ctx, span, kindUnix, err)
	}

	sec, err := timeconv.ParseUnixSeconds(text)
	if err != nil {
		return UnixView{}, s.reject(ctx, span, kindUnix, err)
	}

	in := timeconv.UnixSecondsToInstant(sec)
	span.SetAttributes(attribute.Int64("instant_ms", in.Millis()))
	view := s.unixView(ctx, in)
	return view, s.finish(ctx, span, kindUnix, view.Valid)
}

func checkLength(text string) error {
	if len(text) > domain.MaxInputLength {
		return fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidInput, domain.MaxInputLength)
	}
	return nil
}

// reject records a conversion aborted before computation.
func (s *Service) reject(ctx context.Context, span trace.Span, kind string, err error) error {
	recordConversion(ctx, kind, resultRejected)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.DebugContext(ctx, "conversion input rejected",
		"kind", kind, "error", err)
	return err
}

// invalid records a conversion whose result is shown as Invalid Date.
func (s *Service) invalid(ctx context.Context, span trace.Span, kind string, err error) {
	recordConversion(ctx, kind, resultInvalid)
	span.SetStatus(codes.Error, err.Error())
	s.logger.DebugContext(ctx, "conversion produced invalid date",
		"kind", kind, "error", err)
}

// finish records a computed conversion. A view with an invalid field reports
// timeconv.ErrInvalidDate so callers can tell it apart from a clean result.
func (s *Service) finish(ctx context.Context, span trace.Span, kind string, valid bool) error {
	if !valid {
		s.invalid(ctx, span, kind, timeconv.ErrInvalidDate)
		return timeconv.ErrInvalidDate
	}
	recordConversion(ctx, kind, resultOK)
	return nil
}
