package services

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// isSerializationFailure mendeteksi transaksi yang kalah race di level database
// (deadlock / lock wait timeout). Di jalur booking ini artinya slot keburu
// diambil transaksi lain, jadi kita terjemahkan ke Conflict — caller jangan
// retry otomatis di slot yang sama.
func isSerializationFailure(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		// 1213: deadlock found, 1205: lock wait timeout
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
