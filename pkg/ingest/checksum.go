package ingest

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor/base"
)

// BatchChecksum вычисляет xxh3 (64-bit) хеш канонического представления
// пачки записей. Хеш пишется в audit метаданные: две загрузки одного
// файла дают одинаковую сумму, расхождение выдает поврежденный источник.
// Каноническое представление использует эмиссионный порядок unpivot
// (timestamp-major, code-minor), поэтому сумма детерминирована
func BatchChecksum(records []panel.LongRecord) string {
	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(base.FormatTime(rec.Timestamp))
		sb.WriteByte('|')
		sb.WriteString(rec.Code)
		sb.WriteByte('|')
		sb.WriteString(rec.Metric)
		sb.WriteByte('|')
		if rec.Value == nil {
			sb.WriteString("null")
		} else {
			sb.WriteString(strconv.FormatFloat(*rec.Value, 'g', -1, 64))
		}
		sb.WriteByte('\n')
	}

	h := xxh3.Hash([]byte(sb.String()))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h)
	return hex.EncodeToString(buf[:])
}
