package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RecoverTimestamps maps each extracted file to the modification time stored
// in its archive entry, falling back to the file's on-disk mtime and then to
// UnknownTimestamp. A nil files slice means every matching file. It never
// fails; an unreadable archive yields an empty mapping.
func (i *Inspector) RecoverTimestamps(files []string) Timestamps {
	timestamps := Timestamps{}
	if files == nil {
		files = i.FindMatchingFiles()
	}

	archive, err := openZip(i.fs, i.archivePath)
	if err != nil {
		i.logger.Warn("could not extract timestamps", zap.Error(err))
		return timestamps
	}
	defer archive.Close()

	for _, file := range files {
		timestamps[file] = i.timestampFor(archive.File, file)
	}

	return timestamps
}

func (i *Inspector) timestampFor(entries []*zip.File, file string) string {
	rel := file
	if i.extractDir != "" {
		if r, err := filepath.Rel(i.extractDir, file); err == nil {
			rel = r
		}
	}

	if entry := findEntry(entries, normalizeEntryName(filepath.ToSlash(rel))); entry != nil {
		modified, err := decodeDOSTime(entry.ModifiedDate, entry.ModifiedTime)
		if err == nil {
			return modified.Format(TimestampLayout)
		}
		i.logger.Debug("archive entry has no usable timestamp",
			zap.String("entry", entry.Name),
			zap.Error(err),
		)
	}

	info, err := i.fs.Stat(file)
	if err != nil {
		return UnknownTimestamp
	}
	return info.ModTime().Local().Format(TimestampLayout)
}

// findEntry matches rel against entry names by exact path, then by path
// suffix, then by base name. Each rule scans the whole archive in order
// before the next is tried; the first hit wins.
func findEntry(entries []*zip.File, rel string) *zip.File {
	type rule func(name string) bool

	base := path.Base(rel)
	rules := []rule{
		func(name string) bool { return name == rel },
		func(name string) bool { return strings.HasSuffix(name, "/"+rel) },
		func(name string) bool { return path.Base(name) == base },
	}

	for _, matches := range rules {
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name, "/") {
				continue
			}
			if matches(normalizeEntryName(entry.Name)) {
				return entry
			}
		}
	}
	return nil
}

func normalizeEntryName(name string) string {
	return strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "./")
}

// decodeDOSTime decodes the MS-DOS date and time words of a zip entry,
// rejecting field values that do not form a real calendar time.
func decodeDOSTime(dosDate, dosTime uint16) (time.Time, error) {
	year := int(dosDate>>9) + 1980
	month := int(dosDate>>5) & 0xf
	day := int(dosDate) & 0x1f
	hour := int(dosTime >> 11)
	minute := int(dosTime>>5) & 0x3f
	second := int(dosTime&0x1f) * 2

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, fmt.Errorf("day %d out of range", day)
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("time %02d:%02d:%02d out of range", hour, minute, second)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
