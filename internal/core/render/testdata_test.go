package render

const sampleDiff = `diff --git a/hello.go b/hello.go
index 1111111..2222222 100644
--- a/hello.go
+++ b/hello.go
@@ -1,4 +1,4 @@
 package main
-func hello() string { return "hi" }
+func hello() string { return "hello" }
 
 // end
diff --git a/README.md b/README.md
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/README.md
@@ -0,0 +1,2 @@
+# Title
+body
`

const renameDiff = `diff --git a/old.txt b/new.txt
similarity index 90%
rename from old.txt
rename to new.txt
index 1111111..2222222 100644
--- a/old.txt
+++ b/new.txt
@@ -1 +1 @@
-alpha
+beta
`
