package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadCSV loads a point set from a CSV file. The last column holds the
// integer class label; all other columns are coordinates.
// hasHeader skips the first line if true.
func LoadCSV(filename string, hasHeader bool) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file, hasHeader)
}

// ReadCSV reads a point set in the LoadCSV layout from r.
func ReadCSV(r io.Reader, hasHeader bool) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}
	if len(records) <= startRow {
		return nil, fmt.Errorf("csv file has no data rows")
	}

	numCols := len(records[startRow])
	if numCols < 2 {
		return nil, fmt.Errorf("csv needs at least one feature and a label column (got %d columns)", numCols)
	}
	numFeatures := numCols - 1
	numSamples := len(records) - startRow

	x := mat.NewDense(numSamples, numFeatures, nil)
	y := make([]int, numSamples)
	classes := 0

	for i := startRow; i < len(records); i++ {
		record := records[i]
		if len(record) != numCols {
			return nil, fmt.Errorf("inconsistent number of columns at row %d", i)
		}

		row := i - startRow
		for j := 0; j < numFeatures; j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value at row %d, col %d: %w", i, j, err)
			}
			x.Set(row, j, val)
		}

		label, err := strconv.Atoi(record[numFeatures])
		if err != nil {
			return nil, fmt.Errorf("failed to parse label at row %d: %w", i, err)
		}
		if label < 0 {
			return nil, fmt.Errorf("negative label %d at row %d", label, i)
		}
		y[row] = label
		if label+1 > classes {
			classes = label + 1
		}
	}

	return New(x, y, classes)
}

// WriteCSV writes d with a header of x0..x{D-1},label.
func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)
	dims := d.Dims()

	header := make([]string, 0, dims+1)
	for j := 0; j < dims; j++ {
		header = append(header, "x"+strconv.Itoa(j))
	}
	header = append(header, "label")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, dims+1)
	for i := 0; i < d.Len(); i++ {
		for j := 0; j < dims; j++ {
			record[j] = strconv.FormatFloat(d.X.At(i, j), 'g', -1, 64)
		}
		record[dims] = strconv.Itoa(d.Y[i])
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes d to filename, replacing any existing file.
func SaveCSV(filename string, d *Dataset) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, d); err != nil {
		return err
	}
	return file.Close()
}
