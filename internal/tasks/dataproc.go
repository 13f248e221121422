package tasks

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okmesh/agentmesh/pkg/types"
)

// NewDataProcProfile builds the data-processing agent's task set:
// data_transformation, data_analysis, data_validation, data_aggregation.
func NewDataProcProfile() *Profile {
	p := NewProfile("dataproc")

	p.register(types.Capability{
		Name:        "data_transformation",
		Description: "Transform tabular records between shapes and formats",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"data_transformation"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":            map[string]interface{}{"type": "object"},
						"transformations": map[string]interface{}{"type": "array"},
						"target_format":   map[string]interface{}{"type": "string"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"transformed_data": map[string]interface{}{},
				"data_shape":       map[string]interface{}{"type": "object"},
			},
		},
		EstimatedDuration: 20,
	}, dataTransformationTask)

	p.register(types.Capability{
		Name:        "data_analysis",
		Description: "Descriptive statistics over numeric data",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"data_analysis"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":          map[string]interface{}{"type": "object"},
						"analysis_type": map[string]interface{}{"type": "string"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"statistics": map[string]interface{}{"type": "object"},
				"insights":   map[string]interface{}{"type": "string"},
			},
		},
		EstimatedDuration: 25,
	}, dataAnalysisTask)

	p.register(types.Capability{
		Name:        "data_validation",
		Description: "Validate record quality against rule sets",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"data_validation"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":             map[string]interface{}{"type": "object"},
						"validation_rules": map[string]interface{}{"type": "object"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"validation_results": map[string]interface{}{"type": "object"},
				"quality_score":      map[string]interface{}{"type": "number"},
				"issues_found":       map[string]interface{}{"type": "array"},
			},
		},
		EstimatedDuration: 20,
	}, dataValidationTask)

	p.register(types.Capability{
		Name:        "data_aggregation",
		Description: "Group records and apply aggregate functions",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"data_aggregation"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":                  map[string]interface{}{"type": "object"},
						"groupby_columns":       map[string]interface{}{"type": "array"},
						"aggregation_functions": map[string]interface{}{"type": "object"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"aggregated_data": map[string]interface{}{"type": "object"},
				"summary_stats":   map[string]interface{}{"type": "object"},
			},
		},
		EstimatedDuration: 20,
	}, dataAggregationTask)

	return p
}

func dataTransformationTask(_ context.Context, _ string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	records := recordsFrom(taskCtx)
	targetFormat := ctxString(taskCtx, "target_format", "json")
	transformations := ctxSlice(taskCtx, "transformations")

	originalCount := len(records)
	applied := make([]interface{}, 0, len(transformations))

	for _, raw := range transformations {
		name := fmt.Sprintf("%v", raw)
		switch name {
		case "remove_nulls":
			records = removeNullRecords(records)
		case "uppercase_strings":
			records = uppercaseStrings(records)
		case "normalize_columns":
			records = normalizeNumericColumns(records)
		default:
			return nil, fmt.Errorf("unknown transformation: %s", name)
		}
		applied = append(applied, name)
	}

	var transformed interface{}
	switch targetFormat {
	case "summary":
		transformed = map[string]interface{}{
			"record_count": len(records),
			"columns":      recordColumns(records),
			"sample":       sampleRecords(records, 5),
		}
	default:
		transformed = recordsToInterface(records)
	}

	return map[string]interface{}{
		"transformed_data": transformed,
		"data_shape": map[string]interface{}{
			"original": originalCount,
			"final":    len(records),
		},
		"transformations_applied": applied,
		"target_format":           targetFormat,
	}, nil
}

func dataAnalysisTask(_ context.Context, _ string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	analysisType := ctxString(taskCtx, "analysis_type", "descriptive")
	data := ctxMap(taskCtx, "data")

	columns := map[string][]float64{}
	if values := numericSlice(data["values"]); len(values) > 0 {
		columns["values"] = values
	} else {
		for col, series := range numericColumns(recordsFrom(taskCtx)) {
			columns[col] = series
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no numeric data to analyze")
	}

	descriptive := map[string]interface{}{}
	for _, col := range sortedColumnNames(columns) {
		descriptive[col] = describeSeries(columns[col])
	}

	return map[string]interface{}{
		"statistics": map[string]interface{}{
			"descriptive": descriptive,
		},
		"insights":      fmt.Sprintf("analyzed %d numeric series (%s)", len(columns), analysisType),
		"analysis_type": analysisType,
	}, nil
}

func dataValidationTask(_ context.Context, _ string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	records := recordsFrom(taskCtx)
	rules := ctxMap(taskCtx, "validation_rules")

	if len(records) == 0 {
		return nil, fmt.Errorf("no records to validate")
	}

	issues := []interface{}{}
	results := map[string]interface{}{}

	missingByField := map[string]interface{}{}
	missingTotal := 0
	for _, col := range recordColumnNames(records) {
		count := 0
		for _, rec := range records {
			if v, ok := rec[col]; !ok || v == nil {
				count++
			}
		}
		missingByField[col] = count
		missingTotal += count
	}
	results["missing_values"] = missingByField
	if missingTotal > 0 {
		issues = append(issues, fmt.Sprintf("found %d missing values", missingTotal))
	}

	duplicates := countDuplicateRecords(records)
	results["duplicates"] = duplicates
	if duplicates > 0 {
		issues = append(issues, fmt.Sprintf("found %d duplicate records", duplicates))
	}

	if enabled, _ := rules["email_format"].(bool); enabled {
		invalid := []interface{}{}
		for _, rec := range records {
			if email, ok := rec["email"].(string); ok && !strings.Contains(email, "@") {
				invalid = append(invalid, email)
			}
		}
		results["email_validation"] = map[string]interface{}{
			"invalid_count":  len(invalid),
			"invalid_emails": invalid,
		}
		if len(invalid) > 0 {
			issues = append(issues, fmt.Sprintf("found %d invalid email formats", len(invalid)))
		}
	}

	if ageRule, ok := rules["age_range"].(map[string]interface{}); ok {
		minAge, _ := toFloat(ageRule["min"])
		maxAge, hasMax := toFloat(ageRule["max"])
		if !hasMax {
			maxAge = 120
		}
		outOfRange := []interface{}{}
		for _, rec := range records {
			if age, ok := toFloat(rec["age"]); ok {
				if age < minAge || age > maxAge {
					outOfRange = append(outOfRange, age)
				}
			}
		}
		results["age_validation"] = map[string]interface{}{
			"invalid_count":     len(outOfRange),
			"out_of_range_ages": outOfRange,
		}
		if len(outOfRange) > 0 {
			issues = append(issues, fmt.Sprintf("found %d ages outside valid range", len(outOfRange)))
		}
	}

	totalCells := len(records) * len(recordColumnNames(records))
	qualityScore := 0.0
	if totalCells > 0 {
		qualityScore = float64(totalCells-missingTotal-duplicates) / float64(totalCells)
		if qualityScore < 0 {
			qualityScore = 0
		}
	}

	return map[string]interface{}{
		"validation_results": results,
		"quality_score":      math.Round(qualityScore*1000) / 1000,
		"issues_found":       issues,
		"record_count":       len(records),
	}, nil
}

func dataAggregationTask(_ context.Context, _ string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	records := recordsFrom(taskCtx)
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to aggregate")
	}

	groupBy := stringSlice(ctxSlice(taskCtx, "groupby_columns"))
	aggFns := ctxMap(taskCtx, "aggregation_functions")

	// Default to grouping by string columns and aggregating numeric ones.
	if len(groupBy) == 0 {
		groupBy = stringColumnNames(records)
		if len(groupBy) > 2 {
			groupBy = groupBy[:2]
		}
	}
	if len(aggFns) == 0 {
		aggFns = map[string]interface{}{}
		for col := range numericColumns(records) {
			aggFns[col] = []interface{}{"sum", "mean", "count"}
		}
	}

	groups := map[string][]map[string]interface{}{}
	groupOrder := []string{}
	for _, rec := range records {
		parts := make([]string, 0, len(groupBy))
		for _, col := range groupBy {
			parts = append(parts, fmt.Sprintf("%v", rec[col]))
		}
		key := strings.Join(parts, "|")
		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], rec)
	}

	aggregated := map[string]interface{}{}
	for _, col := range sortedKeys(aggFns) {
		fns := stringSlice(toSlice(aggFns[col]))
		for _, fn := range fns {
			perGroup := map[string]interface{}{}
			for _, key := range groupOrder {
				series := columnSeries(groups[key], col)
				val, err := applyAggregate(fn, series)
				if err != nil {
					return nil, err
				}
				perGroup[key] = val
			}
			aggregated[col+"_"+fn] = perGroup
		}
	}

	groupCounts := map[string]interface{}{}
	for _, key := range groupOrder {
		groupCounts[key] = len(groups[key])
	}

	return map[string]interface{}{
		"aggregated_data": aggregated,
		"summary_stats": map[string]interface{}{
			"group_count":   groupCounts,
			"total_records": len(records),
			"groups":        len(groups),
		},
		"groupby_columns": toInterfaceSlice(groupBy),
	}, nil
}

// record helpers

func recordsFrom(taskCtx map[string]interface{}) []map[string]interface{} {
	data := ctxMap(taskCtx, "data")
	raw, _ := data["records"].([]interface{})
	records := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if rec, ok := r.(map[string]interface{}); ok {
			records = append(records, rec)
		}
	}
	return records
}

func recordColumnNames(records []map[string]interface{}) []string {
	seen := map[string]bool{}
	for _, rec := range records {
		for col := range rec {
			seen[col] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func recordColumns(records []map[string]interface{}) []interface{} {
	return toInterfaceSlice(recordColumnNames(records))
}

func stringColumnNames(records []map[string]interface{}) []string {
	cols := []string{}
	for _, col := range recordColumnNames(records) {
		for _, rec := range records {
			if _, ok := rec[col].(string); ok {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}

func sortedColumnNames(columns map[string][]float64) []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func numericColumns(records []map[string]interface{}) map[string][]float64 {
	out := map[string][]float64{}
	for _, col := range recordColumnNames(records) {
		series := columnSeries(records, col)
		if len(series) > 0 {
			out[col] = series
		}
	}
	return out
}

func columnSeries(records []map[string]interface{}, col string) []float64 {
	series := []float64{}
	for _, rec := range records {
		if v, ok := rec[col]; ok {
			if f, isNum := toFloat(v); isNum {
				if _, isStr := v.(string); !isStr {
					series = append(series, f)
				}
			}
		}
	}
	return series
}

func removeNullRecords(records []map[string]interface{}) []map[string]interface{} {
	kept := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		hasNull := false
		for _, v := range rec {
			if v == nil {
				hasNull = true
				break
			}
		}
		if !hasNull {
			kept = append(kept, rec)
		}
	}
	return kept
}

func uppercaseStrings(records []map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		copied := map[string]interface{}{}
		for k, v := range rec {
			if s, ok := v.(string); ok {
				copied[k] = strings.ToUpper(s)
			} else {
				copied[k] = v
			}
		}
		out = append(out, copied)
	}
	return out
}

// normalizeNumericColumns z-scores each numeric column across the record
// set. Columns with zero variance are left untouched.
func normalizeNumericColumns(records []map[string]interface{}) []map[string]interface{} {
	stats := map[string][2]float64{}
	for col, series := range numericColumns(records) {
		mean := seriesMean(series)
		std := seriesStdDev(series, mean)
		stats[col] = [2]float64{mean, std}
	}

	out := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		copied := map[string]interface{}{}
		for k, v := range rec {
			copied[k] = v
			if st, ok := stats[k]; ok && st[1] > 0 {
				if f, isNum := toFloat(v); isNum {
					if _, isStr := v.(string); !isStr {
						copied[k] = (f - st[0]) / st[1]
					}
				}
			}
		}
		out = append(out, copied)
	}
	return out
}

func countDuplicateRecords(records []map[string]interface{}) int {
	seen := map[string]int{}
	dups := 0
	for _, rec := range records {
		parts := []string{}
		for _, col := range recordColumnNames(records) {
			parts = append(parts, fmt.Sprintf("%s=%v", col, rec[col]))
		}
		key := strings.Join(parts, ";")
		seen[key]++
		if seen[key] > 1 {
			dups++
		}
	}
	return dups
}

func sampleRecords(records []map[string]interface{}, n int) []interface{} {
	if len(records) < n {
		n = len(records)
	}
	return recordsToInterface(records[:n])
}

func recordsToInterface(records []map[string]interface{}) []interface{} {
	out := make([]interface{}, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	return out
}

// series helpers

func describeSeries(series []float64) map[string]interface{} {
	if len(series) == 0 {
		return map[string]interface{}{"count": 0}
	}
	mean := seriesMean(series)
	return map[string]interface{}{
		"count":  len(series),
		"mean":   mean,
		"min":    seriesMin(series),
		"max":    seriesMax(series),
		"std":    seriesStdDev(series, mean),
		"median": seriesMedian(series),
	}
}

func applyAggregate(fn string, series []float64) (interface{}, error) {
	switch fn {
	case "sum":
		return seriesSum(series), nil
	case "mean":
		return seriesMean(series), nil
	case "count":
		return len(series), nil
	case "min":
		return seriesMin(series), nil
	case "max":
		return seriesMax(series), nil
	}
	return nil, fmt.Errorf("unknown aggregation function: %s", fn)
}

func seriesSum(series []float64) float64 {
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum
}

func seriesMean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return seriesSum(series) / float64(len(series))
}

func seriesMin(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	min := series[0]
	for _, v := range series[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func seriesMax(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	max := series[0]
	for _, v := range series[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func seriesStdDev(series []float64, mean float64) float64 {
	if len(series) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range series {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(series)-1))
}

func seriesMedian(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sorted := append([]float64(nil), series...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func numericSlice(raw interface{}) []float64 {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, v := range list {
		if f, isNum := toFloat(v); isNum {
			out = append(out, f)
		}
	}
	return out
}

func stringSlice(raw []interface{}) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toSlice(raw interface{}) []interface{} {
	if s, ok := raw.([]interface{}); ok {
		return s
	}
	if raw == nil {
		return nil
	}
	return []interface{}{raw}
}

func toInterfaceSlice(ss []string) []interface{} {
	out := make([]interface{}, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
