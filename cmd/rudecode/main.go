/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// rudecode decodes ATP Recording Unit and MMI binary recordings into
// structured records for analysis and storage.
package main

import (
	"github.com/Lawliet0813/ATP-Re/cmd/rudecode/cmd"
)

func main() {
	cmd.Execute()
}
