// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textDebugString = "^time=[^ ]+ severity=DEBUG msg=www.debugExample.com"
	textInfoString  = "^time=[^ ]+ severity=INFO msg=www.infoExample.com"
	textWarnString  = "^time=[^ ]+ severity=WARNING msg=www.warningExample.com"
	textErrorString = "^time=[^ ]+ severity=ERROR msg=www.errorExample.com"

	jsonInfoString  = "^\\{\"time\":\"[^\"]+\",\"severity\":\"INFO\",\"msg\":\"www.infoExample.com\"\\}"
	jsonErrorString = "^\\{\"time\":\"[^\"]+\",\"severity\":\"ERROR\",\"msg\":\"www.errorExample.com\"\\}"
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectLogsToGivenBuffer(buf *bytes.Buffer, level slog.Level, format string) {
	programLevel := new(slog.LevelVar)
	programLevel.Set(level)
	f := &loggerFactory{format: format, programLevel: programLevel}
	defaultLogger = slog.New(f.createJsonOrTextHandler(buf, programLevel, ""))
}

func (t *LoggerTest) TestTextFormat_LevelWarn_SuppressesDebugAndInfo() {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, LevelWarn, "text")

	Debugf("www.debugExample.com")
	assert.Empty(t.T(), buf.String())

	Infof("www.infoExample.com")
	assert.Empty(t.T(), buf.String())

	Warnf("www.warningExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(textWarnString), buf.String())
	buf.Reset()

	Errorf("www.errorExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(textErrorString), buf.String())
}

func (t *LoggerTest) TestTextFormat_LevelDebug_LogsEverythingAtOrAboveDebug() {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, LevelDebug, "text")

	Debugf("www.debugExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(textDebugString), buf.String())
	buf.Reset()

	Infof("www.infoExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(textInfoString), buf.String())
}

func (t *LoggerTest) TestJSONFormat_LevelInfo() {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, LevelInfo, "json")

	Infof("www.infoExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(jsonInfoString), buf.String())
	buf.Reset()

	Errorf("www.errorExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(jsonErrorString), buf.String())
}

func (t *LoggerTest) TestSetLevel_UpdatesEffectiveSeverityInPlace() {
	var buf bytes.Buffer
	programLevel := new(slog.LevelVar)
	programLevel.Set(LevelError)
	defaultLoggerFactory = &loggerFactory{format: "text", programLevel: programLevel}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(&buf, programLevel, ""))

	Infof("www.infoExample.com")
	assert.Empty(t.T(), buf.String())

	SetLevel(LevelInfo)

	Infof("www.infoExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(textInfoString), buf.String())
}

func (t *LoggerTest) TestSetLogFormat_SwitchesTextAndJSON() {
	defaultLoggerFactory = &loggerFactory{
		format:       "text",
		level:        LevelInfo,
		programLevel: new(slog.LevelVar),
	}
	defaultLoggerFactory.programLevel.Set(LevelInfo)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(&bytes.Buffer{}, defaultLoggerFactory.programLevel, ""))

	SetLogFormat("json")
	assert.Equal(t.T(), "json", defaultLoggerFactory.format)

	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, LevelInfo, defaultLoggerFactory.format)
	Infof("www.infoExample.com")
	assert.Regexp(t.T(), regexp.MustCompile(jsonInfoString), buf.String())
}
