package ephemeris

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/star/gravsim/internal/transform"
)

// observationFields names the seven fields of an observation line, in order.
var observationFields = [7]string{
	"ascension_hours", "ascension_minutes", "ascension_seconds",
	"declination_degrees", "declination_minutes", "declination_seconds",
	"delta",
}

type line struct {
	num  int
	text string
}

// Parse reads 3-line ephemeris records from r:
//
//	<name> <mass>
//	<ra_h> <ra_m> <ra_s> <dec_d> <dec_m> <dec_s> <delta>   (time t)
//	<ra_h> <ra_m> <ra_s> <dec_d> <dec_m> <dec_s> <delta>   (time t + 1h)
//
// Blank lines are skipped. Unlike a best-effort reader, any malformed line
// fails the whole parse with a *ParseError: a simulation over a partial body
// set is meaningless.
func Parse(r io.Reader, logger *slog.Logger) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	var lines []line
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			lines = append(lines, line{num: num, text: text})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ephemeris data: %w", err)
	}

	var records []Record
	for i := 0; i < len(lines); i += 3 {
		if i+2 >= len(lines) {
			return nil, &ParseError{Line: lines[len(lines)-1].num, Err: ErrTruncated}
		}

		rec, err := parseRecord(lines[i], lines[i+1], lines[i+2])
		if err != nil {
			return nil, err
		}
		logger.Debug("parsed ephemeris record",
			"component", "ephemeris",
			"name", rec.Name,
			"mass", rec.Mass,
			"line", lines[i].num,
		)
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(header, first, second line) (Record, error) {
	tokens := strings.Fields(header.text)
	if len(tokens) != 2 {
		return Record{}, &ParseError{Line: header.num, Err: fmt.Errorf("expected \"<name> <mass>\", got %d fields", len(tokens))}
	}
	mass, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Record{}, &ParseError{Line: header.num, Field: "mass", Err: err}
	}

	obs1, err := parseObservation(first)
	if err != nil {
		return Record{}, err
	}
	obs2, err := parseObservation(second)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Name:   tokens[0],
		Mass:   mass,
		First:  obs1,
		Second: obs2,
	}, nil
}

func parseObservation(l line) (transform.Observation, error) {
	tokens := strings.Fields(l.text)
	if len(tokens) != len(observationFields) {
		return transform.Observation{}, &ParseError{
			Line: l.num,
			Err:  fmt.Errorf("expected %d observation fields, got %d", len(observationFields), len(tokens)),
		}
	}

	var v [7]float64
	for i, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return transform.Observation{}, &ParseError{Line: l.num, Field: observationFields[i], Err: err}
		}
		v[i] = f
	}

	return transform.Observation{
		Ascension:   transform.AscensionToRadians(v[0], v[1], v[2]),
		Declination: transform.DeclinationToRadians(v[3], v[4], v[5]),
		Delta:       v[6],
	}, nil
}
