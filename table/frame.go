package table

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Frame converts the table to a DataFrame with string columns. No cell is
// treated as missing. An empty table yields a frame whose Err is set.
func (t *Table) Frame() dataframe.DataFrame {
	return dataframe.LoadRecords(t.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
}
