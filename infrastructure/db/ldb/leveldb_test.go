package ldb

import (
	"bytes"
	"os"
	"reflect"
	"testing"

	"github.com/syndtr/goleveldb/leveldb"
)

func prepareDatabaseForTest(t *testing.T, testName string) (ldb *LevelDB, teardownFunc func()) {
	// Create a temp db to run tests against
	path, err := os.MkdirTemp("", testName)
	if err != nil {
		t.Fatalf("%s: MkdirTemp unexpectedly "+
			"failed: %s", testName, err)
	}
	ldb, err = NewLevelDB(path)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly "+
			"failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = ldb.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly "+
				"failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return ldb, teardownFunc
}

func TestLevelDBSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBSanity")
	defer teardownFunc()

	// Put something into the db
	key := []byte("key")
	putData := []byte("Hello world!")
	err := ldb.Put(key, putData)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Put returned "+
			"unexpected error: %s", err)
	}

	// Get from the key previously put to
	getData, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Get returned "+
			"unexpected error: %s", err)
	}

	// Make sure that the put data and the get data are equal
	if !reflect.DeepEqual(getData, putData) {
		t.Fatalf("TestLevelDBSanity: get data and "+
			"put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Delete returned "+
			"unexpected error: %s", err)
	}
	exists, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Has returned "+
			"unexpected error: %s", err)
	}
	if exists {
		t.Fatalf("TestLevelDBSanity: key exists after Delete")
	}
	missing, err := ldb.Get(key)
	if err != nil || missing != nil {
		t.Fatalf("TestLevelDBSanity: expected (nil, nil) for a missing key, got (%s, %v)", missing, err)
	}
}

func TestKeysWithPrefixAndBatch(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestKeysWithPrefixAndBatch")
	defer teardownFunc()

	batch := new(leveldb.Batch)
	batch.Put([]byte("a/1"), []byte("1"))
	batch.Put([]byte("a/2"), []byte("2"))
	batch.Put([]byte("b/1"), []byte("3"))
	err := ldb.Write(batch)
	if err != nil {
		t.Fatalf("TestKeysWithPrefixAndBatch: Write returned "+
			"unexpected error: %s", err)
	}

	keys, err := ldb.KeysWithPrefix([]byte("a/"))
	if err != nil {
		t.Fatalf("TestKeysWithPrefixAndBatch: KeysWithPrefix returned "+
			"unexpected error: %s", err)
	}
	if len(keys) != 2 || !bytes.Equal(keys[0], []byte("a/1")) || !bytes.Equal(keys[1], []byte("a/2")) {
		t.Fatalf("TestKeysWithPrefixAndBatch: unexpected keys %q", keys)
	}
}
